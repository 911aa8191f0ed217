// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dvr

// DefaultExpirePeriodHours is how long past its start a recording is kept.
const DefaultExpirePeriodHours = 24

// Expired reports whether a recording starting at start (unix seconds) is stale at now.
// The cut-off is start < now - periodHours.
func Expired(start, now int64, periodHours int) bool {
	return start < now-int64(periodHours)*3600
}
