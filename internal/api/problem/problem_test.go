// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ManuGH/recsched/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recordings", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusConflict, "recordings/conflict", "Conflict", "RECORDING_CONFLICT", "overlaps", map[string]any{
		"channelId": "ch1",
		"status":    999,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "recordings/conflict", body["type"])
	assert.Equal(t, "Conflict", body["title"])
	assert.Equal(t, "RECORDING_CONFLICT", body["code"])
	assert.Equal(t, "overlaps", body["detail"])
	assert.Equal(t, "/api/v1/recordings", body["instance"])
	assert.Equal(t, "req-1", body[JSONKeyRequestID])
	assert.Equal(t, "ch1", body["channelId"])
	assert.Equal(t, float64(http.StatusConflict), body["status"], "reserved keys cannot be overridden")
}

func TestWrite_RequestIDFromHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(HeaderRequestID, "hdr-7")

	Write(rec, nil, http.StatusBadRequest, "recordings/invalid", "Bad Request", "INVALID_INPUT", "", nil)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hdr-7", body[JSONKeyRequestID])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}
