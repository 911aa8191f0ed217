// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recsched_config_validation_errors_total",
		Help: "Total number of configuration validation failures",
	})

	xmltvImportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recsched_xmltv_import_total",
		Help: "Programmes processed by XMLTV imports by outcome",
	}, []string{"outcome"}) // outcome=scheduled|rejected

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recsched_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "route", "code"})
)

// IncConfigValidationError counts a rejected configuration.
func IncConfigValidationError() { configValidationErrors.Inc() }

// IncXMLTVImport counts one programme handled by an import.
func IncXMLTVImport(scheduled bool) {
	outcome := "rejected"
	if scheduled {
		outcome = "scheduled"
	}
	xmltvImportTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records the latency of one served request.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}
