// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
		want      string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			requestID: "test-id-123",
			want:      "test-id-123",
		},
		{
			name:      "background context",
			ctx:       context.Background(),
			requestID: "req-456",
			want:      "req-456",
		},
		{
			name:      "empty request ID",
			ctx:       context.Background(),
			requestID: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.requestID)
			got := RequestIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "nil context", ctx: nil, want: ""},
		{name: "context without request ID", ctx: context.Background(), want: ""},
		{name: "context with wrong type", ctx: context.WithValue(context.Background(), requestIDKey, 123), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequestIDFromContext(tt.ctx); got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	enriched := WithContext(ctx, l)
	enriched.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry[FieldRequestID] != "req-123" {
		t.Errorf("expected request_id req-123, got %v", entry[FieldRequestID])
	}
}

func TestWithContext_EmptyContextKeepsLogger(t *testing.T) {
	baseLogger := WithComponent("test")
	got := WithContext(context.Background(), baseLogger)
	if got.GetLevel() != baseLogger.GetLevel() {
		t.Error("Logger level should be preserved")
	}
}

func TestWithComponentFromContext(t *testing.T) {
	logger := WithComponentFromContext(context.Background(), "test-component")
	if logger.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from WithComponentFromContext")
	}
}

func TestDerive(t *testing.T) {
	logger1 := Derive(nil)
	if logger1.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from Derive with nil builder")
	}

	logger2 := Derive(func(ctx *zerolog.Context) {
		ctx.Str("custom_field", "test_value")
	})
	if logger2.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from Derive with custom builder")
	}
}

func TestWithTraceContext(t *testing.T) {
	noopTracer := noop.NewTracerProvider().Tracer("test")
	ctx, span := noopTracer.Start(context.Background(), "test-span")
	defer span.End()

	if l := WithTraceContext(ctx); l.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger with noop span")
	}

	t.Run("WithValidSpan", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		var buf bytes.Buffer
		Configure(Config{Output: &buf})
		defer Configure(Config{})

		logger := WithTraceContext(ctx)
		logger.Info().Msg("test with trace")

		var logEntry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
			t.Fatalf("Failed to parse log output: %v", err)
		}
		if logEntry[FieldTraceID] != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Errorf("Expected trace_id in log output, got %v", logEntry[FieldTraceID])
		}
		if logEntry[FieldSpanID] != "00f067aa0ba902b7" {
			t.Errorf("Expected span_id in log output, got %v", logEntry[FieldSpanID])
		}
	})
}

func TestFromContext(t *testing.T) {
	if l := FromContext(nil); l == nil { //nolint:staticcheck
		t.Fatal("expected base logger for nil context")
	}

	var buf bytes.Buffer
	attached := zerolog.New(&buf)
	ctx := attached.WithContext(context.Background())
	FromContext(ctx).Info().Msg("attached")
	if buf.Len() == 0 {
		t.Error("expected the context logger to be used")
	}
}
