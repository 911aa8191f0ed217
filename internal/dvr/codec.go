// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"sort"
	"strconv"
	"strings"
)

// Persisted format:
//
//	store  := record (";" record)*
//	record := channelId "," yyyyMMddHHmmss "," durationSeconds
const (
	recordSep = ";"
	fieldSep  = ","
)

// DecodeIssue describes one record Decode skipped.
type DecodeIssue struct {
	Index  int    // position of the record in the input
	Record string // raw record text
	Reason string
}

// Encode serialises every interval that is not expired at now.
// Records are emitted by channel, then start.
func Encode(intervals []Interval, now int64, expireHours int) string {
	kept := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if Expired(iv.Start, now, expireHours) {
			continue
		}
		kept = append(kept, iv)
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].ChannelID != kept[j].ChannelID {
			return kept[i].ChannelID < kept[j].ChannelID
		}
		return kept[i].Start < kept[j].Start
	})

	var b strings.Builder
	for i, iv := range kept {
		if i > 0 {
			b.WriteString(recordSep)
		}
		b.WriteString(iv.ChannelID)
		b.WriteString(fieldSep)
		b.WriteString(FormatStart(iv.Start))
		b.WriteString(fieldSep)
		b.WriteString(strconv.FormatInt(iv.Duration, 10))
	}
	return b.String()
}

// Decode parses a persisted string. Malformed records are skipped one by one and
// reported in issues; the rest are still returned.
func Decode(s string) ([]Interval, []DecodeIssue) {
	if s == "" {
		return nil, nil
	}

	var (
		out    []Interval
		issues []DecodeIssue
	)
	for i, rec := range strings.Split(s, recordSep) {
		iv, reason := decodeRecord(rec)
		if reason != "" {
			issues = append(issues, DecodeIssue{Index: i, Record: rec, Reason: reason})
			continue
		}
		out = append(out, iv)
	}
	return out, issues
}

func decodeRecord(rec string) (Interval, string) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) != 3 {
		return Interval{}, "expected 3 fields, got " + strconv.Itoa(len(fields))
	}
	if fields[0] == "" {
		return Interval{}, "empty channel id"
	}
	start, err := ParseStart(fields[1])
	if err != nil {
		return Interval{}, err.Error()
	}
	dur, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || !allDigits(fields[2]) {
		return Interval{}, "duration " + strconv.Quote(fields[2]) + ": not an integer"
	}
	if dur <= 0 {
		return Interval{}, "duration must be positive"
	}
	return Interval{ChannelID: fields[0], Start: start, Duration: dur}, ""
}
