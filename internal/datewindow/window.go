// Package datewindow computes the rolling set of acquisition dates a product
// must fall into to be considered recent.
package datewindow

import "time"

// Layout is the date format embedded in product folder names.
const Layout = "20060102"

// DefaultDays is the default window size.
const DefaultDays = 15

// Window is the set of the N most recent calendar days, today included.
type Window struct {
	dates []string // newest first
	set   map[string]struct{}
}

// New builds a window of days calendar days ending at now's date in now's
// location. A non-positive size yields an empty window.
func New(days int, now time.Time) Window {
	w := Window{set: make(map[string]struct{})}
	y, m, today := now.Date()
	for i := 0; i < days; i++ {
		// calendar arithmetic at noon UTC, so DST gaps cannot skip a day
		d := time.Date(y, m, today-i, 12, 0, 0, 0, time.UTC).Format(Layout)
		w.dates = append(w.dates, d)
		w.set[d] = struct{}{}
	}
	return w
}

// Contains reports whether date (YYYYMMDD) is inside the window.
func (w Window) Contains(date string) bool {
	_, ok := w.set[date]
	return ok
}

// Newest returns today's date, or "" for an empty window.
func (w Window) Newest() string {
	if len(w.dates) == 0 {
		return ""
	}
	return w.dates[0]
}

// Oldest returns the earliest date in the window, or "" for an empty window.
func (w Window) Oldest() string {
	if len(w.dates) == 0 {
		return ""
	}
	return w.dates[len(w.dates)-1]
}

// Dates returns a copy of the window's dates, newest first.
func (w Window) Dates() []string {
	out := make([]string, len(w.dates))
	copy(out, w.dates)
	return out
}

// Len returns the number of dates in the window.
func (w Window) Len() int {
	return len(w.set)
}
