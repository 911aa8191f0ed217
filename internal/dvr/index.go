// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"errors"
	"slices"
	"sort"
	"time"
)

// ConflictPolicy selects how Index.Insert treats a new interval.
type ConflictPolicy int

const (
	// ConflictReject rejects any interval overlapping another on the same channel.
	ConflictReject ConflictPolicy = iota
	// ConflictDedupeOnly only rejects an exact (channel, start) duplicate.
	ConflictDedupeOnly
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictReject:
		return "reject"
	case ConflictDedupeOnly:
		return "dedupe"
	default:
		return "unknown"
	}
}

// ParseConflictPolicy maps a config value to a ConflictPolicy. Empty means ConflictReject.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch s {
	case "", "reject":
		return ConflictReject, nil
	case "dedupe":
		return ConflictDedupeOnly, nil
	default:
		return ConflictReject, errors.New("unknown conflict policy: " + s)
	}
}

var (
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrEndOverflow      = errors.New("end of recording out of range")
	ErrOverlapsNext     = errors.New("overlaps following recording")
	ErrOverlapsPrevious = errors.New("overlaps preceding recording")
	ErrDuplicate        = errors.New("recording already scheduled")
)

// Index holds intervals per channel, each slice sorted ascending by Start.
// It is not safe for concurrent use; Scheduler serialises access.
type Index struct {
	policy   ConflictPolicy
	channels map[string][]Interval
	size     int
}

// NewIndex returns an empty index using the given policy.
func NewIndex(policy ConflictPolicy) *Index {
	return &Index{
		policy:   policy,
		channels: make(map[string][]Interval),
	}
}

// ceilIndex returns the position of the first interval with Start >= start.
func ceilIndex(s []Interval, start int64) int {
	return sort.Search(len(s), func(i int) bool { return s[i].Start >= start })
}

// Insert adds iv unless it conflicts with an existing interval on its channel.
// Back-to-back intervals are accepted.
func (ix *Index) Insert(iv Interval) error {
	if iv.Duration <= 0 {
		return ErrInvalidDuration
	}
	if EndOverflows(iv.Start, iv.Duration) {
		return ErrEndOverflow
	}
	s := ix.channels[iv.ChannelID]
	i := ceilIndex(s, iv.Start)

	switch ix.policy {
	case ConflictDedupeOnly:
		if i < len(s) && s[i].Start == iv.Start {
			return ErrDuplicate
		}
	default:
		if i < len(s) && s[i].Start < iv.End() {
			return ErrOverlapsNext
		}
		if i > 0 && iv.Start < s[i-1].End() {
			return ErrOverlapsPrevious
		}
	}

	ix.channels[iv.ChannelID] = slices.Insert(s, i, iv)
	ix.size++
	return nil
}

// Remove deletes the interval keyed by (channelID, start). It reports whether one was present.
func (ix *Index) Remove(channelID string, start int64) bool {
	s := ix.channels[channelID]
	i := ceilIndex(s, start)
	if i >= len(s) || s[i].Start != start {
		return false
	}
	s = slices.Delete(s, i, i+1)
	if len(s) == 0 {
		delete(ix.channels, channelID)
	} else {
		ix.channels[channelID] = s
	}
	ix.size--
	return true
}

// Floor returns the interval with the largest Start <= start on channelID.
func (ix *Index) Floor(channelID string, start int64) (Interval, bool) {
	s := ix.channels[channelID]
	i := ceilIndex(s, start)
	if i < len(s) && s[i].Start == start {
		return s[i], true
	}
	if i == 0 {
		return Interval{}, false
	}
	return s[i-1], true
}

// Ceiling returns the interval with the smallest Start >= start on channelID.
func (ix *Index) Ceiling(channelID string, start int64) (Interval, bool) {
	s := ix.channels[channelID]
	i := ceilIndex(s, start)
	if i >= len(s) {
		return Interval{}, false
	}
	return s[i], true
}

// Contains reports whether an interval keyed by (channelID, start) exists.
func (ix *Index) Contains(channelID string, start int64) bool {
	s := ix.channels[channelID]
	i := ceilIndex(s, start)
	return i < len(s) && s[i].Start == start
}

// OnDay returns every interval whose start falls on day's UTC calendar date,
// ordered by start then channel.
func (ix *Index) OnDay(day time.Time) []Interval {
	y, m, d := day.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	to := from + 24*3600

	var out []Interval
	for _, s := range ix.channels {
		for i := ceilIndex(s, from); i < len(s) && s[i].Start < to; i++ {
			out = append(out, s[i])
		}
	}
	sortIntervals(out)
	return out
}

// All returns a copy of every interval, ordered by start then channel.
func (ix *Index) All() []Interval {
	out := make([]Interval, 0, ix.size)
	for _, s := range ix.channels {
		out = append(out, s...)
	}
	sortIntervals(out)
	return out
}

// Channels returns the ids of every channel holding at least one interval, sorted.
func (ix *Index) Channels() []string {
	out := make([]string, 0, len(ix.channels))
	for id := range ix.channels {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of intervals held.
func (ix *Index) Len() int {
	return ix.size
}

func sortIntervals(s []Interval) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Start != s[j].Start {
			return s[i].Start < s[j].Start
		}
		return s[i].ChannelID < s[j].ChannelID
	})
}
