// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dvr keeps the set of scheduled recordings: a per-channel index of
// non-overlapping time intervals persisted as one delimited string.
package dvr

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// StartLayout is the persisted form of a recording start: UTC, second precision,
// fixed width so that it sorts lexically.
const StartLayout = "20060102150405"

// Starts outside [MinStart, MaxStart] do not fit the 14-digit layout.
var (
	MinStart = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	MaxStart = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// ValidStart reports whether sec can be persisted in StartLayout.
func ValidStart(sec int64) bool {
	return sec >= MinStart && sec <= MaxStart
}

// EndOverflows reports whether start+duration does not fit in an int64.
func EndOverflows(start, duration int64) bool {
	return duration > 0 && start > math.MaxInt64-duration
}

// Interval is one scheduled recording: [Start, Start+Duration) on ChannelID.
type Interval struct {
	ChannelID string `json:"channelId"`
	Start     int64  `json:"start"`           // unix seconds
	Duration  int64  `json:"durationSeconds"` // > 0
}

// End returns the exclusive end of the interval in unix seconds.
func (iv Interval) End() int64 {
	return iv.Start + iv.Duration
}

// StartTime returns Start as a UTC time.
func (iv Interval) StartTime() time.Time {
	return time.Unix(iv.Start, 0).UTC()
}

// Overlaps reports whether iv and o share any instant. Touching intervals do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End() && o.Start < iv.End()
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s@%s+%ds", iv.ChannelID, FormatStart(iv.Start), iv.Duration)
}

// FormatStart renders unix seconds in StartLayout.
func FormatStart(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(StartLayout)
}

// ParseStart parses a 14-digit StartLayout timestamp as UTC.
func ParseStart(s string) (int64, error) {
	if len(s) != len(StartLayout) {
		return 0, fmt.Errorf("start %q: want %d digits", s, len(StartLayout))
	}
	if !allDigits(s) {
		return 0, fmt.Errorf("start %q: non-digit character", s)
	}
	t, err := time.ParseInLocation(StartLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("start %q: %w", s, err)
	}
	if !ValidStart(t.Unix()) {
		return 0, fmt.Errorf("start %q: year out of range", s)
	}
	return t.Unix(), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidChannelID reports whether id can be stored: non-empty and free of the
// persisted format's separators.
func ValidChannelID(id string) bool {
	return id != "" && !strings.ContainsAny(id, fieldSep+recordSep)
}
