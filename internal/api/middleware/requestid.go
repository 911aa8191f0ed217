// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/ManuGH/recsched/internal/api/problem"
	"github.com/ManuGH/recsched/internal/log"
	"github.com/google/uuid"
)

// validRequestID bounds what a client may supply as X-Request-ID.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns every request an id, reusing a well-formed client-supplied one.
// The id is stored in the request context and echoed in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(problem.HeaderRequestID)
		if !validRequestID.MatchString(id) {
			id = uuid.New().String()
		}
		w.Header().Set(problem.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(log.ContextWithRequestID(r.Context(), id)))
	})
}
