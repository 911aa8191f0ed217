// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// Recording attributes
	RecordingChannelKey  = "recording.channel_id"
	RecordingStartKey    = "recording.start"
	RecordingDurationKey = "recording.duration_s"
	RecordingCountKey    = "recording.count"

	// Storage attributes
	StorageKeyKey   = "storage.key"
	StorageBytesKey = "storage.bytes"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// RecordingAttributes creates span attributes describing one recording interval.
func RecordingAttributes(channelID string, start, durationSeconds int64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if channelID != "" {
		attrs = append(attrs, attribute.String(RecordingChannelKey, channelID))
	}
	attrs = append(attrs,
		attribute.Int64(RecordingStartKey, start),
		attribute.Int64(RecordingDurationKey, durationSeconds),
	)
	return attrs
}

// StorageAttributes creates span attributes for a preference store write.
func StorageAttributes(key string, bytes, records int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(StorageKeyKey, key),
		attribute.Int(StorageBytesKey, bytes),
		attribute.Int(RecordingCountKey, records),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
