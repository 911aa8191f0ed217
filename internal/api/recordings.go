// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/recsched/internal/api/problem"
	"github.com/ManuGH/recsched/internal/dvr"
	"github.com/ManuGH/recsched/internal/epg"
	"github.com/ManuGH/recsched/internal/log"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type addRecordRequest struct {
	ChannelID       string `json:"channelId"`
	Start           string `json:"start"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// recordingResponse is the wire form of a dvr.Interval.
type recordingResponse struct {
	ChannelID       string    `json:"channelId"`
	Start           time.Time `json:"start"`
	StartKey        string    `json:"startKey"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"durationSeconds"`
}

type listResponse struct {
	Day        *int                `json:"day,omitempty"`
	Recordings []recordingResponse `json:"recordings"`
}

type scheduledResponse struct {
	ChannelID string `json:"channelId"`
	StartKey  string `json:"startKey"`
	Recorded  bool   `json:"recorded"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
	Records int    `json:"records"`
}

func toResponse(iv dvr.Interval) recordingResponse {
	return recordingResponse{
		ChannelID:       iv.ChannelID,
		Start:           iv.StartTime(),
		StartKey:        dvr.FormatStart(iv.Start),
		End:             time.Unix(iv.End(), 0).UTC(),
		DurationSeconds: iv.Duration,
	}
}

// parseStartParam accepts the persisted 14-digit form or RFC 3339.
func parseStartParam(s string) (time.Time, error) {
	if start, err := dvr.ParseStart(s); err == nil {
		return time.Unix(start, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("start %q: expected yyyyMMddHHmmss or RFC 3339", s)
	}
	if !dvr.ValidStart(t.Unix()) {
		return time.Time{}, fmt.Errorf("start %q: year out of range", s)
	}
	return t, nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		records []dvr.Interval
		day     *int
	)
	if raw := r.URL.Query().Get("day"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_day", "Bad Request", "INVALID_DAY",
				"day must be an integer offset from today")
			return
		}
		day = &offset
		records = s.sched.RecordsByDayOffset(offset)
	} else {
		records = s.sched.Records()
	}

	out := listResponse{Day: day, Recordings: make([]recordingResponse, 0, len(records))}
	for _, iv := range records {
		out.Recordings = append(out.Recordings, toResponse(iv))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !dvr.ValidChannelID(req.ChannelID) {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_channel", "Bad Request", "INVALID_CHANNEL",
			"channelId must be non-empty and must not contain ',' or ';'")
		return
	}
	if req.DurationSeconds <= 0 {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_duration", "Bad Request", "INVALID_DURATION",
			"durationSeconds must be positive")
		return
	}
	start, err := parseStartParam(req.Start)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_start", "Bad Request", "INVALID_START", err.Error())
		return
	}
	if dvr.EndOverflows(start.Unix(), req.DurationSeconds) {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_duration", "Bad Request", "INVALID_DURATION",
			"durationSeconds is too large")
		return
	}

	iv := dvr.Interval{ChannelID: req.ChannelID, Start: start.Unix(), Duration: req.DurationSeconds}
	if !s.sched.AddRecord(r.Context(), req.ChannelID, start, req.DurationSeconds) {
		writeConflict(w, r, iv)
		return
	}
	writeCreated(w, r, iv)
}

func (s *Server) handleAddProgramme(w http.ResponseWriter, r *http.Request) {
	var p epg.Programme
	if !decodeBody(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_programme", "Bad Request", "INVALID_PROGRAMME", err.Error())
		return
	}
	if !dvr.ValidChannelID(p.ChannelID()) || p.LengthMinutes() <= 0 {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_programme", "Bad Request", "INVALID_PROGRAMME",
			"programme channel or length is not schedulable")
		return
	}

	iv := dvr.Interval{ChannelID: p.ChannelID(), Start: p.StartTime().Unix(), Duration: int64(p.LengthMinutes()) * 60}
	if !s.sched.AddProgram(r.Context(), p) {
		writeConflict(w, r, iv)
		return
	}
	writeCreated(w, r, iv)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	channelID, start, ok := recordingKey(w, r)
	if !ok {
		return
	}
	s.sched.RemoveRecord(r.Context(), channelID, start)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIsScheduled(w http.ResponseWriter, r *http.Request) {
	channelID, start, ok := recordingKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, scheduledResponse{
		ChannelID: channelID,
		StartKey:  dvr.FormatStart(start.Unix()),
		Recorded:  s.sched.IsScheduled(channelID, start),
	})
}

func recordingKey(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	channelID := chi.URLParam(r, "channelId")
	start, err := parseStartParam(chi.URLParam(r, "start"))
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_start", "Bad Request", "INVALID_START", err.Error())
		return "", time.Time{}, false
	}
	return channelID, start, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		detail := "invalid JSON body: " + err.Error()
		if errors.Is(err, io.EOF) {
			detail = "request body is empty"
		}
		writeProblem(w, r, http.StatusBadRequest, "recordings/invalid_body", "Bad Request", "INVALID_BODY", detail)
		return false
	}
	return true
}

func writeCreated(w http.ResponseWriter, r *http.Request, iv dvr.Interval) {
	w.Header().Set("Location", "/api/v1/recordings/"+iv.ChannelID+"/"+dvr.FormatStart(iv.Start))
	writeJSON(w, r, http.StatusCreated, toResponse(iv))
}

func writeConflict(w http.ResponseWriter, r *http.Request, iv dvr.Interval) {
	problem.Write(w, r, http.StatusConflict, "recordings/rejected", "Conflict", "RECORDING_REJECTED",
		"recording starts in the past or overlaps an existing recording on the channel",
		map[string]any{
			"channelId": iv.ChannelID,
			"startKey":  dvr.FormatStart(iv.Start),
		})
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string) {
	problem.Write(w, r, status, problemType, title, code, detail, nil)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
