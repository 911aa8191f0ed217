// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.WithLabelValues(labels...))
}

func TestIncRecordingAdd_CanonicalLabels(t *testing.T) {
	for _, result := range []string{AddResultAdded, AddResultPast, AddResultOverlap} {
		initial := getCounterVecValue(t, recordingAddsTotal, result)
		IncRecordingAdd(result)
		assert.Equal(t, initial+1, getCounterVecValue(t, recordingAddsTotal, result), result)
	}
}

func TestIncRecordingAdd_NormalizesUnknowns(t *testing.T) {
	initial := getCounterVecValue(t, recordingAddsTotal, "unknown")
	IncRecordingAdd("something_else")
	assert.Equal(t, initial+1, getCounterVecValue(t, recordingAddsTotal, "unknown"))

	initialAdded := getCounterVecValue(t, recordingAddsTotal, AddResultAdded)
	IncRecordingAdd("  ADDED ")
	assert.Equal(t, initialAdded+1, getCounterVecValue(t, recordingAddsTotal, AddResultAdded))
}

func TestIncLoadSkipped(t *testing.T) {
	initial := getCounterVecValue(t, loadSkippedTotal, LoadSkippedExpired)
	IncLoadSkipped(LoadSkippedExpired)
	assert.Equal(t, initial+1, getCounterVecValue(t, loadSkippedTotal, LoadSkippedExpired))

	initialUnknown := getCounterVecValue(t, loadSkippedTotal, "unknown")
	IncLoadSkipped("bogus")
	assert.Equal(t, initialUnknown+1, getCounterVecValue(t, loadSkippedTotal, "unknown"))
}

func TestPersistAndRemoveCounters(t *testing.T) {
	initialPersist := getCounterValue(t, persistErrorsTotal)
	IncPersistError()
	assert.Equal(t, initialPersist+1, getCounterValue(t, persistErrorsTotal))

	initialRemove := getCounterValue(t, recordingRemovesTotal)
	IncRecordingRemove()
	assert.Equal(t, initialRemove+1, getCounterValue(t, recordingRemovesTotal))
}

func TestSetRecords(t *testing.T) {
	SetRecords(7)
	assert.Equal(t, float64(7), getGaugeValue(t, recordsGauge))
	SetRecords(0)
	assert.Equal(t, float64(0), getGaugeValue(t, recordsGauge))
}
