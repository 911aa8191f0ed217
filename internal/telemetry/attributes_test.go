// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestRecordingAttributes(t *testing.T) {
	tests := []struct {
		name      string
		channelID string
		wantLen   int
	}{
		{name: "with channel", channelID: "ch-1", wantLen: 3},
		{name: "without channel", channelID: "", wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := RecordingAttributes(tt.channelID, 1700000000, 3600)
			if len(attrs) != tt.wantLen {
				t.Fatalf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.channelID != "" {
				verifyAttribute(t, attrs, RecordingChannelKey, attribute.StringValue(tt.channelID))
			}
			verifyAttribute(t, attrs, RecordingStartKey, attribute.Int64Value(1700000000))
			verifyAttribute(t, attrs, RecordingDurationKey, attribute.Int64Value(3600))
		})
	}
}

func TestStorageAttributes(t *testing.T) {
	attrs := StorageAttributes("recordings", 120, 4)
	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}
	verifyAttribute(t, attrs, StorageKeyKey, attribute.StringValue("recordings"))
	verifyAttribute(t, attrs, StorageBytesKey, attribute.IntValue(120))
	verifyAttribute(t, attrs, RecordingCountKey, attribute.IntValue(4))
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("persist")
	verifyAttribute(t, attrs, ErrorKey, attribute.BoolValue(true))
	verifyAttribute(t, attrs, ErrorTypeKey, attribute.StringValue("persist"))
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key string, want attribute.Value) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value != want {
				t.Errorf("Attribute %s: expected %v, got %v", key, want.Emit(), attr.Value.Emit())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
