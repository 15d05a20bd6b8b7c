// Copyright (C) 2017 ScyllaDB

package readrepair

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/tickler/pkg/metrics"
	"github.com/scylladb/tickler/pkg/progress"
	"github.com/scylladb/tickler/pkg/scan"
	"github.com/scylladb/tickler/pkg/schema"
)

// Outcome is what happened to a single row.
type Outcome int

// Outcome enumeration.
const (
	Repaired Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Repaired:
		return "repaired"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Config specifies the Driver behaviour.
type Config struct {
	// Throttle is the pause between consecutive rows.
	Throttle time.Duration
	// KeepGoing makes the driver skip rows that could not be read at the
	// repair consistency level instead of failing the run.
	KeepGoing bool
}

// Driver reads every row yielded by a scan one by one.
type Driver struct {
	config   Config
	repairer Repairer
	metrics  metrics.TicklerMetrics
	out      io.Writer
	logger   log.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDriver returns a Driver writing user facing lines to out.
func NewDriver(config Config, repairer Repairer, m metrics.TicklerMetrics, out io.Writer, logger log.Logger) *Driver {
	return &Driver{
		config:   config,
		repairer: repairer,
		metrics:  m,
		out:      out,
		logger:   logger,
		now:      time.Now,
		sleep:    sleep,
	}
}

// Run repairs rows of t with keys in the order they are yielded. Keys are
// always closed. On a fatal error stats describe the rows handled before the
// failing one and the error wraps the driver error with the row key.
func (d *Driver) Run(ctx context.Context, t schema.Table, keys scan.Iterator, stats *progress.Stats) (runErr error) {
	fmt.Fprintf(d.out, "Starting to repair table %s\n", t)
	d.logger.Info(ctx, "Starting to repair table",
		"table", t.String(),
		"primary_key", t.PrimaryKey,
		"throttle", d.config.Throttle,
		"keep_going", d.config.KeepGoing,
	)

	defer func() {
		if err := keys.Close(); err != nil && runErr == nil {
			runErr = errors.Wrap(err, "scan")
			d.logger.Error(ctx, "Scan failed", "table", t.String(), "error", err)
		}
		progress.PrintSummary(d.out, t.String(), stats, d.now())
	}()

	for keys.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := keys.Key()
		o, err := d.repairRow(ctx, t, key)
		if err != nil {
			return err
		}

		stats.Processed++
		switch o {
		case Repaired:
			stats.Repaired++
		case Skipped:
			stats.Skipped++
		}
		d.metrics.AddRow(t.Keyspace, t.Name, o.String())

		if err := d.sleep(ctx, d.config.Throttle); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) repairRow(ctx context.Context, t schema.Table, key interface{}) (Outcome, error) {
	d.logger.Debug(ctx, "Repairing row", "table", t.String(), "key", FormatKey(key))

	err := d.repairer.Repair(ctx, key)
	if err == nil {
		return Repaired, nil
	}

	if d.config.KeepGoing && IsRecoverable(err) {
		d.logger.Error(ctx, "Failed to repair row, skipping",
			"table", t.String(),
			"key", FormatKey(key),
			"error", err,
		)
		return Skipped, nil
	}

	d.logger.Error(ctx, "Failed to repair row",
		"table", t.String(),
		"key", FormatKey(key),
		"error", err,
	)
	d.metrics.AddRow(t.Keyspace, t.Name, "failed")
	return 0, errors.Wrapf(err, "repair row %s=%s", t.PrimaryKey, FormatKey(key))
}

// FormatKey returns printable form of a primary key value.
func FormatKey(key interface{}) string {
	switch v := key.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
