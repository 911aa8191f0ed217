// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/ManuGH/recsched/internal/api/problem"
	"github.com/ManuGH/recsched/internal/log"
)

// Recoverer turns a handler panic into a 500 problem response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			logger := log.WithComponentFromContext(r.Context(), "api")
			logger.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("path", r.URL.Path).
				Msg("handler panic")
			problem.Write(w, r, http.StatusInternalServerError, "system/internal", "Internal Server Error", "INTERNAL", "", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
