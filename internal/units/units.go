// Package units provides shared constants and conversions for stimulus
// frequencies and training durations.
package units

import "time"

// Duration unit constants
const (
	Hours   = "hours"
	Minutes = "minutes"
	Seconds = "seconds"
)

// ValidDurationUnits contains all valid duration unit values
var ValidDurationUnits = []string{Hours, Minutes, Seconds}

// IsValidDurationUnit checks if the given unit is in the list of valid units
func IsValidDurationUnit(unit string) bool {
	for _, validUnit := range ValidDurationUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertDuration converts a duration to a float in the target units.
// Unknown units fall back to seconds.
func ConvertDuration(d time.Duration, targetUnits string) float64 {
	switch targetUnits {
	case Hours:
		return d.Seconds() / 3600
	case Minutes:
		return d.Seconds() / 60
	case Seconds:
		return d.Seconds()
	default:
		return d.Seconds() // default to seconds if unknown unit
	}
}

// HzToKHz converts a stimulus frequency from Hz (as logged by the rig) to
// kHz (as reported in trial tables and charts).
func HzToKHz(hz float64) float64 {
	return hz / 1000
}
