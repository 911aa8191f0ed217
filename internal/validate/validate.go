// SPDX-License-Identifier: MIT

// Package validate collects field-level configuration problems so that every
// bad setting is reported at once instead of failing on the first.
package validate

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Error is one rejected field.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return "validation failed for " + e.Field + ": " + e.Message
}

// ValidationError is the error returned by Validator.Err.
type ValidationError struct {
	errors []Error
}

// Errors returns the individual field errors.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.errors))
	for _, fe := range e.errors {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates field errors. The zero value is ready to use.
type Validator struct {
	errors []Error
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

// IsValid reports whether no error has been recorded.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns the recorded errors.
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err returns nil when valid, otherwise a ValidationError holding a copy of
// the errors recorded so far.
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return ValidationError{errors: slices.Clone(v.errors)}
}

func between[T cmp.Ordered](value, lo, hi T) bool {
	return value >= lo && value <= hi
}

// Range checks lo <= value <= hi.
func (v *Validator) Range(field string, value, lo, hi int) {
	if !between(value, lo, hi) {
		v.AddError(field, fmt.Sprintf("value must be between %d and %d, got %d", lo, hi, value), value)
	}
}

// FloatRange checks lo <= value <= hi.
func (v *Validator) FloatRange(field string, value, lo, hi float64) {
	if !between(value, lo, hi) {
		v.AddError(field, fmt.Sprintf("value must be between %g and %g, got %g", lo, hi, value), value)
	}
}

// Positive checks value > 0.
func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("value must be positive, got %d", value), value)
	}
}

// NonNegative checks value >= 0.
func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("value cannot be negative, got %d", value), value)
	}
}

// NotEmpty rejects empty and blank strings.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf checks that value is listed in allowed.
func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.AddError(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value), value)
	}
}

// HostPort checks a "host:port" address with a port in 1..65535. An empty host
// (":8080") is accepted only when allowEmptyHost is set.
func (v *Validator) HostPort(field, addr string, allowEmptyHost bool) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid address: %v", err), addr)
		return
	}
	if host == "" && !allowEmptyHost {
		v.AddError(field, "address must have a host", addr)
		return
	}
	if port, err := strconv.Atoi(portStr); err != nil || !between(port, 1, 65535) {
		v.AddError(field, fmt.Sprintf("port must be between 1 and 65535, got %q", portStr), addr)
	}
}

// Directory checks that path names a directory. Paths containing ".." are
// refused. A missing directory is an error when mustExist is set and is
// created otherwise.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if path == "" {
		v.AddError(field, "directory path cannot be empty", path)
		return
	}
	if strings.Contains(path, "..") {
		v.AddError(field, "path contains traversal sequences (..)", path)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid path: %v", err), path)
		return
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist) && mustExist:
		v.AddError(field, "directory does not exist", path)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0750); err != nil {
			v.AddError(field, fmt.Sprintf("cannot create directory: %v", err), path)
		}
	case err != nil:
		v.AddError(field, fmt.Sprintf("cannot access directory: %v", err), path)
	case !info.IsDir():
		v.AddError(field, "path is not a directory", path)
	}
}
