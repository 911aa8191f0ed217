// SPDX-License-Identifier: MIT

package validate

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevels are the levels the daemon accepts, most verbose first.
var LogLevels = []string{"debug", "info", "warn", "error"}

var ErrInvalidLogLevel = errors.New("invalid log level (must be: debug, info, warn, error)")

// ParseLogLevel maps a configured level name to its zerolog level. Case is ignored.
func ParseLogLevel(s string) (zerolog.Level, error) {
	name := strings.ToLower(s)
	for _, l := range LogLevels {
		if name == l {
			return zerolog.ParseLevel(name)
		}
	}
	return zerolog.NoLevel, ErrInvalidLogLevel
}

// LogLevel validates that value names one of LogLevels.
func (v *Validator) LogLevel(field, value string) {
	if _, err := ParseLogLevel(value); err != nil {
		v.AddError(field, err.Error(), value)
	}
}
