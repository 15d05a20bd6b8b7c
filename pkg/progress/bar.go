// Copyright (C) 2017 ScyllaDB

package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar is a terminal progress bar, it is satisfied by
// *progressbar.ProgressBar.
type Bar interface {
	Add64(n int64) error
	ChangeMax64(max int64)
	Finish() error
}

// NewBar returns a progress bar writing to w. If total is not known
// a spinner with row count and rate is shown instead of a bar.
func NewBar(w io.Writer, table string, total int64) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Repairing "+table),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			io.WriteString(w, "\n") // nolint: errcheck
		}),
	)
}
