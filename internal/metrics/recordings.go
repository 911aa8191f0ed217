// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for the recording scheduler.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for recsched_add_total.
const (
	AddResultAdded           = "added"
	AddResultInvalidChannel  = "invalid_channel"
	AddResultInvalidDuration = "invalid_duration"
	AddResultInvalidStart    = "invalid_start"
	AddResultPast            = "past"
	AddResultOverlap         = "overlap"
	AddResultDuplicate       = "duplicate"
)

// Label values for recsched_load_skipped_total.
const (
	LoadSkippedMalformed = "malformed"
	LoadSkippedExpired   = "expired"
	LoadSkippedConflict  = "conflict"
)

var (
	recordingAddsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recsched_add_total",
		Help: "Total number of recording add requests, by result.",
	}, []string{"result"})

	recordingRemovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recsched_remove_total",
		Help: "Total number of recordings removed.",
	})

	loadSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recsched_load_skipped_total",
		Help: "Total number of persisted records skipped while loading, by reason.",
	}, []string{"reason"})

	persistErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recsched_persist_errors_total",
		Help: "Total number of failed writes to the preference store.",
	})

	recordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recsched_records",
		Help: "Current number of recordings held in memory.",
	})
)

// IncRecordingAdd records the outcome of an add request.
// result ∈ {added,invalid_channel,invalid_duration,past,overlap,duplicate}; anything else is "unknown".
func IncRecordingAdd(result string) {
	recordingAddsTotal.WithLabelValues(normalizeAddResult(result)).Inc()
}

// IncRecordingRemove counts one removed recording.
func IncRecordingRemove() {
	recordingRemovesTotal.Inc()
}

// IncLoadSkipped counts one persisted record dropped during load.
func IncLoadSkipped(reason string) {
	switch reason {
	case LoadSkippedMalformed, LoadSkippedExpired, LoadSkippedConflict:
	default:
		reason = "unknown"
	}
	loadSkippedTotal.WithLabelValues(reason).Inc()
}

// IncPersistError counts one failed write to the preference store.
func IncPersistError() {
	persistErrorsTotal.Inc()
}

// SetRecords sets the number of recordings currently held in memory.
func SetRecords(n int) {
	recordsGauge.Set(float64(n))
}

func normalizeAddResult(result string) string {
	r := strings.ToLower(strings.TrimSpace(result))
	switch r {
	case AddResultAdded, AddResultInvalidChannel, AddResultInvalidDuration, AddResultInvalidStart,
		AddResultPast, AddResultOverlap, AddResultDuplicate:
		return r
	default:
		return "unknown"
	}
}
