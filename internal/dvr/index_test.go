// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).Unix()

func at(hour, minute int) int64 {
	return day0 + int64(hour)*3600 + int64(minute)*60
}

func TestIndex_BackToBackAccepted(t *testing.T) {
	ix := NewIndex(ConflictReject)

	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 3600}))
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(11, 0), Duration: 3600}))
	// Ending exactly where an existing one starts is fine too.
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(9, 0), Duration: 3600}))

	assert.Equal(t, 3, ix.Len())
}

func TestIndex_OverlapRejected(t *testing.T) {
	ix := NewIndex(ConflictReject)
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 3600}))

	tests := []struct {
		name string
		iv   Interval
		want error
	}{
		{name: "contained", iv: Interval{ChannelID: "ch1", Start: at(10, 30), Duration: 900}, want: ErrOverlapsPrevious},
		{name: "tail overlap", iv: Interval{ChannelID: "ch1", Start: at(10, 59), Duration: 120}, want: ErrOverlapsPrevious},
		{name: "head overlap", iv: Interval{ChannelID: "ch1", Start: at(9, 30), Duration: 1801}, want: ErrOverlapsNext},
		{name: "covers", iv: Interval{ChannelID: "ch1", Start: at(9, 0), Duration: 4 * 3600}, want: ErrOverlapsNext},
		{name: "same start", iv: Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 60}, want: ErrOverlapsNext},
		{name: "zero duration", iv: Interval{ChannelID: "ch1", Start: at(15, 0), Duration: 0}, want: ErrInvalidDuration},
		{name: "negative duration", iv: Interval{ChannelID: "ch1", Start: at(15, 0), Duration: -5}, want: ErrInvalidDuration},
		{name: "end overflows", iv: Interval{ChannelID: "ch1", Start: at(15, 0), Duration: math.MaxInt64}, want: ErrEndOverflow},
		{name: "end overflows before", iv: Interval{ChannelID: "ch1", Start: at(8, 0), Duration: math.MaxInt64 - at(8, 0) + 1}, want: ErrEndOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ix.Insert(tt.iv), tt.want)
			assert.Equal(t, 1, ix.Len())
		})
	}
}

func TestIndex_ChannelsAreIndependent(t *testing.T) {
	ix := NewIndex(ConflictReject)
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 3600}))
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch2", Start: at(10, 0), Duration: 3600}))
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, []string{"ch1", "ch2"}, ix.Channels())

	ix.Remove("ch1", at(10, 0))
	assert.Equal(t, []string{"ch2"}, ix.Channels())
}

func TestIndex_FloorCeiling(t *testing.T) {
	ix := NewIndex(ConflictReject)
	a := Interval{ChannelID: "ch1", Start: at(8, 0), Duration: 600}
	b := Interval{ChannelID: "ch1", Start: at(12, 0), Duration: 600}
	require.NoError(t, ix.Insert(b))
	require.NoError(t, ix.Insert(a))

	_, ok := ix.Floor("ch1", at(7, 0))
	assert.False(t, ok)
	got, ok := ix.Floor("ch1", at(8, 0))
	assert.True(t, ok)
	assert.Equal(t, a, got)
	got, ok = ix.Floor("ch1", at(11, 0))
	assert.True(t, ok)
	assert.Equal(t, a, got)

	got, ok = ix.Ceiling("ch1", at(8, 1))
	assert.True(t, ok)
	assert.Equal(t, b, got)
	got, ok = ix.Ceiling("ch1", at(12, 0))
	assert.True(t, ok)
	assert.Equal(t, b, got)
	_, ok = ix.Ceiling("ch1", at(12, 1))
	assert.False(t, ok)

	_, ok = ix.Floor("unknown", at(12, 0))
	assert.False(t, ok)
}

func TestIndex_RemoveIdempotent(t *testing.T) {
	ix := NewIndex(ConflictReject)
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 3600}))

	assert.False(t, ix.Remove("ch1", at(10, 1)))
	assert.False(t, ix.Remove("other", at(10, 0)))
	assert.Equal(t, 1, ix.Len())

	assert.True(t, ix.Remove("ch1", at(10, 0)))
	assert.False(t, ix.Remove("ch1", at(10, 0)))
	assert.Equal(t, 0, ix.Len())
	assert.False(t, ix.Contains("ch1", at(10, 0)))

	// The freed slot can be reused.
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 30), Duration: 60}))
}

func TestIndex_DedupeOnly(t *testing.T) {
	ix := NewIndex(ConflictDedupeOnly)
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 3600}))
	require.NoError(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 30), Duration: 900}))
	assert.ErrorIs(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(10, 0), Duration: 60}), ErrDuplicate)
	assert.Equal(t, 2, ix.Len())
}

func TestIndex_OnDay(t *testing.T) {
	ix := NewIndex(ConflictReject)
	yesterday := Interval{ChannelID: "ch1", Start: at(-1, 0), Duration: 600}
	lateToday := Interval{ChannelID: "ch2", Start: at(23, 59), Duration: 3600}
	earlyToday := Interval{ChannelID: "ch1", Start: at(0, 0), Duration: 600}
	tomorrow := Interval{ChannelID: "ch1", Start: at(24, 0), Duration: 600}
	for _, iv := range []Interval{tomorrow, lateToday, yesterday, earlyToday} {
		require.NoError(t, ix.Insert(iv))
	}

	got := ix.OnDay(time.Unix(at(13, 0), 0))
	assert.Equal(t, []Interval{earlyToday, lateToday}, got)

	// Day boundaries follow UTC regardless of the zone of the argument.
	zone := time.FixedZone("UTC+5", 5*3600)
	got = ix.OnDay(time.Unix(at(13, 0), 0).In(zone))
	assert.Equal(t, []Interval{earlyToday, lateToday}, got)

	assert.Equal(t, []Interval{tomorrow}, ix.OnDay(time.Unix(at(24, 1), 0)))
	assert.Empty(t, ix.OnDay(time.Unix(at(24*5, 0), 0)))
}

func TestIndex_NoOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ix := NewIndex(ConflictReject)
	channels := []string{"a", "b", "c"}

	accepted := 0
	for i := 0; i < 2000; i++ {
		iv := Interval{
			ChannelID: channels[rng.Intn(len(channels))],
			Start:     day0 + rng.Int63n(7*24*3600),
			Duration:  1 + rng.Int63n(3*3600),
		}
		if ix.Insert(iv) != nil {
			continue
		}
		accepted++
		assertNoOverlap(t, ix.All())
	}
	assert.Equal(t, accepted, ix.Len())
	assert.Greater(t, accepted, 0)
}

func assertNoOverlap(t *testing.T, all []Interval) {
	t.Helper()
	byChannel := map[string][]Interval{}
	for _, iv := range all {
		byChannel[iv.ChannelID] = append(byChannel[iv.ChannelID], iv)
	}
	for ch, s := range byChannel {
		for i := range s {
			for j := i + 1; j < len(s); j++ {
				if s[i].Overlaps(s[j]) {
					t.Fatalf("channel %s: %v overlaps %v", ch, s[i], s[j])
				}
			}
		}
	}
}

func TestParseConflictPolicy(t *testing.T) {
	p, err := ParseConflictPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ConflictReject, p)

	p, err = ParseConflictPolicy("dedupe")
	require.NoError(t, err)
	assert.Equal(t, ConflictDedupeOnly, p)
	assert.Equal(t, "dedupe", p.String())

	_, err = ParseConflictPolicy("merge")
	assert.Error(t, err)
}

func TestIndex_LargestDurationStillChecked(t *testing.T) {
	ix := NewIndex(ConflictReject)
	long := Interval{ChannelID: "ch1", Start: at(10, 0), Duration: math.MaxInt64 - at(10, 0)}
	require.NoError(t, ix.Insert(long))
	assert.Equal(t, int64(math.MaxInt64), long.End())

	assert.ErrorIs(t, ix.Insert(Interval{ChannelID: "ch1", Start: at(11, 0), Duration: 600}), ErrOverlapsPrevious)
	assert.Equal(t, 1, ix.Len())
}
