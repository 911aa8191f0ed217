package epg

import (
	"strings"
	"time"
)

// FindBest returns the id whose normalized name is closest to name.
// maxDist is the largest edit distance accepted.
func FindBest(name string, nameToID map[string]string, maxDist int) (string, bool) {
	key := NameKey(name)

	if id, ok := nameToID[key]; ok {
		return id, true
	}

	bestID := ""
	bestKey := ""
	bestDist := maxDist + 1
	for k, id := range nameToID {
		dist := levenshtein(key, k)
		// Ties resolve to the lexically smallest key so results are stable.
		if dist < bestDist || (dist == bestDist && k < bestKey) {
			bestDist = dist
			bestID = id
			bestKey = k
		}
	}

	if bestDist <= maxDist {
		return bestID, true
	}
	return "", false
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	lenA, lenB := len(ra), len(rb)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	dp := make([][]int, lenA+1)
	for i := range dp {
		dp[i] = make([]int, lenB+1)
		dp[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[i][j] = min(
				dp[i-1][j]+1,      // deletion
				dp[i][j-1]+1,      // insertion
				dp[i-1][j-1]+cost, // substitution
			)
		}
	}
	return dp[lenA][lenB]
}

// Filter selects programmes for scheduling. Zero fields match everything.
type Filter struct {
	Channel string    // channel id
	Title   string    // case-insensitive substring of the title
	After   time.Time // programmes starting before this are skipped
}

// Select returns the valid programmes of tv matching f, in document order.
func (tv *TV) Select(f Filter) []Programme {
	title := NameKey(f.Title)
	var out []Programme
	for _, p := range tv.Programs {
		if p.Validate() != nil {
			continue
		}
		if f.Channel != "" && p.Channel != f.Channel {
			continue
		}
		if title != "" && !strings.Contains(NameKey(p.Title.Value), title) {
			continue
		}
		if !f.After.IsZero() && p.StartTime().Before(f.After) {
			continue
		}
		out = append(out, p)
	}
	return out
}
