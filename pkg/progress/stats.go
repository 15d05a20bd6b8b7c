// Copyright (C) 2017 ScyllaDB

package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats accumulates statistics of a single run. It is owned by the run,
// the driver updates row counters and the Reporter updates report markers.
// It must not be shared between runs or goroutines.
type Stats struct {
	// Processed is the number of rows the driver is done with, repaired or
	// skipped.
	Processed int64
	Repaired  int64
	Skipped   int64

	Start               time.Time
	LastReport          time.Time
	LastReportProcessed int64
}

// NewStats returns Stats of a run starting at start.
func NewStats(start time.Time) *Stats {
	return &Stats{
		Start:      start,
		LastReport: start,
	}
}

// Elapsed returns time since start of the run.
func (s *Stats) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.Start)
}

// Remaining extrapolates time left to process total rows assuming every row
// takes the same time. It returns false if there is not enough data.
func (s *Stats) Remaining(now time.Time, total int64) (time.Duration, bool) {
	if total <= 0 || s.Processed <= 0 {
		return 0, false
	}
	if s.Processed >= total {
		return 0, true
	}
	perRow := float64(s.Elapsed(now)) / float64(s.Processed)
	return time.Duration(perRow * float64(total-s.Processed)), true
}

// PrintSummary writes the final lines of a run.
func PrintSummary(w io.Writer, table string, s *Stats, now time.Time) {
	fmt.Fprintf(w, "Repair of table %s took %s\n", table, roundDuration(s.Elapsed(now)))
	fmt.Fprintf(w, "%s rows processed, %s repaired, %s skipped\n",
		humanize.Comma(s.Processed), humanize.Comma(s.Repaired), humanize.Comma(s.Skipped))
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second)
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	default:
		return d.Round(time.Microsecond)
	}
}
