// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBest(t *testing.T) {
	nameToID := map[string]string{
		"das erste": "das.erste",
		"zdf":       "zdf",
		"zdfneo":    "zdfneo",
		"arte":      "arte",
	}

	tests := []struct {
		name    string
		query   string
		maxDist int
		wantID  string
		wantOK  bool
	}{
		{name: "exact after normalize", query: "ZDF HD", maxDist: 0, wantID: "zdf", wantOK: true},
		{name: "typo", query: "Das Ersta", maxDist: 1, wantID: "das.erste", wantOK: true},
		{name: "too far", query: "Das Ersta", maxDist: 0},
		{name: "nothing close", query: "Eurosport", maxDist: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := FindBest(tt.query, nameToID, tt.maxDist)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("", ""))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, levenshtein("österreich", "osterreich"))
}

func TestSelect(t *testing.T) {
	tv, err := ReadXMLTV(strings.NewReader(sampleXMLTV))
	require.NoError(t, err)

	all := tv.Select(Filter{})
	require.Len(t, all, 2, "programme with stop before start is skipped")

	got := tv.Select(Filter{Title: "TATORT"})
	require.Len(t, got, 1)
	assert.Equal(t, "das.erste", got[0].Channel)

	got = tv.Select(Filter{Channel: "zdf"})
	require.Len(t, got, 1)
	assert.Equal(t, "heute", got[0].Title.Value)

	got = tv.Select(Filter{After: time.Date(2026, 3, 10, 19, 10, 0, 0, time.UTC)})
	require.Len(t, got, 1)
	assert.Equal(t, "Tatort", got[0].Title.Value)
}
