package scoring

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [Start, End). A record timestamped
// exactly at Start belongs to the window; one timestamped exactly at End does
// not. Adjacent windows therefore never double-count a record.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window and rejects empty or inverted intervals.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("invalid window: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// Lookback returns the window covering the last `days` days ending at now.
func Lookback(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// MonthOf returns the calendar-month window containing t, in t's location.
func MonthOf(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Previous returns the window of equal span immediately preceding w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
}

// Contains reports whether t falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window span.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
