package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/tilefetch/tilefetch/internal/selection"
)

// Failure records an entry that could not be processed.
type Failure struct {
	URI string
	Err error
}

// Report summarises one run. It is returned even when every entry failed.
type Report struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	DryRun    bool
	Cancelled bool

	Regions    int
	Listed     int
	Undated    int
	Verdicts   map[selection.Verdict]int
	Copied     int
	CopyFailed int
	Panics     int
	Failures   []Failure
}

func newReport(dryRun bool) Report {
	return Report{
		RunID:    newRunID(),
		Started:  time.Now(),
		DryRun:   dryRun,
		Verdicts: make(map[selection.Verdict]int),
	}
}

// newRunID returns a time-ordered UUIDv7, falling back to a random v4.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (r *Report) fail(uri string, err error) {
	r.Failures = append(r.Failures, Failure{URI: uri, Err: err})
}

// Accepted is the number of folders that passed selection.
func (r Report) Accepted() int {
	return r.Verdicts[selection.Accept]
}

// Skipped is the number of dated folders that did not pass selection.
func (r Report) Skipped() int {
	n := 0
	for v, c := range r.Verdicts {
		if v != selection.Accept {
			n += c
		}
	}
	return n
}

// OK reports whether the run finished without failures.
func (r Report) OK() bool {
	return r.CopyFailed == 0 && r.Panics == 0 && !r.Cancelled
}
