package summary

import (
	"fmt"
	"time"

	"github.com/banshee-data/training.report/internal/timeutil"
)

// DateWindow is an inclusive date range in YYYY-MM-DD form.
type DateWindow struct {
	Min string
	Max string
}

// NewDateWindow validates a window, defaulting an empty max to the clock's
// current date so "everything up to today" needs no explicit bound.
func NewDateWindow(min, max string, clock timeutil.Clock) (DateWindow, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if max == "" {
		max = clock.Now().Format("2006-01-02")
	}
	for _, d := range []string{min, max} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return DateWindow{}, fmt.Errorf("bad date %q: %w", d, err)
		}
	}
	if min > max {
		return DateWindow{}, fmt.Errorf("window %s..%s is inverted", min, max)
	}
	return DateWindow{Min: min, Max: max}, nil
}

// Contains reports whether date falls inside the window.
func (w DateWindow) Contains(date string) bool {
	return date >= w.Min && date <= w.Max
}

// Days returns every date in the window in order.
func (w DateWindow) Days() []string {
	start, _ := time.Parse("2006-01-02", w.Min)
	end, _ := time.Parse("2006-01-02", w.Max)
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}
