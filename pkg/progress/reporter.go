// Copyright (C) 2017 ScyllaDB

package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/scylladb/tickler/pkg/scan"
)

// DefaultEvery is the default number of rows between status lines.
const DefaultEvery = 1000

// Options specify how often status lines are written.
type Options struct {
	// Every is the number of processed rows between status lines,
	// 0 disables row based reporting.
	Every int64
	// Period is the time between status lines, 0 disables time based
	// reporting. A status line is never written if no row was processed
	// since the last one.
	Period time.Duration
	// Bar is an optional progress bar advanced as rows are processed.
	Bar Bar
}

// Reporter wraps an Iterator and writes status lines to w as the consumer
// advances. Values, their order and count are passed through unchanged.
type Reporter struct {
	it    scan.Iterator
	stats *Stats
	total int64
	opts  Options
	w     io.Writer

	barProcessed int64
	barSpinner   bool
	now          func() time.Time
}

var _ scan.Iterator = &Reporter{}

// NewReporter returns a Reporter over it. The stats are read to learn how
// many rows were processed so far. Total is the expected number of rows,
// a non-positive value means unknown and disables time remaining.
func NewReporter(w io.Writer, it scan.Iterator, stats *Stats, total int64, opts Options) *Reporter {
	return &Reporter{
		it:    it,
		stats: stats,
		total: total,
		opts:  opts,
		w:     w,
		now:   time.Now,
	}
}

// Next reports progress if due and advances the underlying iterator.
func (r *Reporter) Next() bool {
	r.advanceBar()
	if now := r.now(); r.due(now) {
		r.report(now)
	}
	return r.it.Next()
}

// Key returns the current key of the underlying iterator.
func (r *Reporter) Key() interface{} {
	return r.it.Key()
}

// Close closes the underlying iterator and finishes the bar.
func (r *Reporter) Close() error {
	r.advanceBar()
	if r.opts.Bar != nil {
		r.opts.Bar.Finish() // nolint: errcheck
	}
	return r.it.Close()
}

func (r *Reporter) due(now time.Time) bool {
	delta := r.stats.Processed - r.stats.LastReportProcessed
	if delta <= 0 {
		return false
	}
	if r.opts.Every > 0 && delta >= r.opts.Every {
		return true
	}
	if r.opts.Period > 0 && now.Sub(r.stats.LastReport) >= r.opts.Period {
		return true
	}
	return false
}

func (r *Reporter) report(now time.Time) {
	s := r.stats

	var ofTotal string
	if r.total > 0 {
		ofTotal = "/" + humanize.Comma(r.total)
	}
	fmt.Fprintf(r.w, "%s%s rows processed (%s rows in %s)\n",
		humanize.Comma(s.Processed), ofTotal,
		humanize.Comma(s.Processed-s.LastReportProcessed), roundDuration(now.Sub(s.LastReport)),
	)
	if remaining, ok := s.Remaining(now, r.total); ok {
		fmt.Fprintf(r.w, "   %s elapsed, %s remaining\n",
			roundDuration(s.Elapsed(now)), roundDuration(remaining))
	}

	s.LastReport = now
	s.LastReportProcessed = s.Processed
}

func (r *Reporter) advanceBar() {
	if r.opts.Bar == nil {
		return
	}
	if delta := r.stats.Processed - r.barProcessed; delta > 0 {
		// The bar completes once it reaches total, rows past an
		// underestimated total are counted by a spinner.
		if r.total > 0 && r.stats.Processed >= r.total && !r.barSpinner {
			r.opts.Bar.ChangeMax64(-1)
			r.barSpinner = true
		}
		r.opts.Bar.Add64(delta) // nolint: errcheck
		r.barProcessed = r.stats.Processed
	}
}
