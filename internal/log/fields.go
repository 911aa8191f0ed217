// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldReason    = "reason"

	// Recording fields
	FieldChannelID = "channel_id"
	FieldStart     = "start"
	FieldDuration  = "duration_s"
	FieldRecord    = "record"
	FieldCount     = "count"

	// Storage fields
	FieldBackend = "backend"
	FieldKey     = "key"
	FieldPath    = "path"
)
