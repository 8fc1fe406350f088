// util/time.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"time"
)

// TimeInterval represents a time interval with start and end times
type TimeInterval [2]time.Time

// Start returns the start time of the interval
func (ti TimeInterval) Start() time.Time {
	return ti[0]
}

// End returns the end time of the interval
func (ti TimeInterval) End() time.Time {
	return ti[1]
}

// Duration returns the duration of the interval
func (ti TimeInterval) Duration() time.Duration {
	return ti[1].Sub(ti[0])
}

// Contains checks if the interval contains the given time
func (ti TimeInterval) Contains(t time.Time) bool {
	return !t.Before(ti[0]) && !t.After(ti[1])
}
