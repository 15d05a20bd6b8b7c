// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-log/gocqllog"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/tickler/pkg/config"
	"github.com/scylladb/tickler/pkg/estimate"
	"github.com/scylladb/tickler/pkg/metrics"
	"github.com/scylladb/tickler/pkg/progress"
	"github.com/scylladb/tickler/pkg/readrepair"
	"github.com/scylladb/tickler/pkg/scan"
	"github.com/scylladb/tickler/pkg/schema"
	"github.com/scylladb/tickler/pkg/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func run(cmd *cobra.Command, c config.Config, a rootArgs) (runError error) {
	// Get a base context
	ctx := log.WithNewTraceID(context.Background())
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create logger
	logger, err := config.MakeLogger(c.Logger)
	if err != nil {
		return errors.Wrapf(err, "logger")
	}
	defer func() {
		if runError != nil {
			logger.Error(ctx, "Bye", "error", runError)
		} else {
			logger.Info(ctx, "Bye")
		}
		logger.Sync() // nolint
	}()

	logger.Info(ctx, "Using config", "config", c.Obfuscated(), "config_files", a.configFiles)

	// Redirect standard logger and driver logger to the logger
	zap.RedirectStdLog(log.BaseOf(logger))
	driverLogger := log.NopLogger
	if a.verbose >= config.DriverLogVerbosity {
		driverLogger = logger.Named("gocql")
	}
	gocql.Logger = gocqllog.StdLogger{
		BaseCtx: ctx,
		Logger:  driverLogger,
	}

	m := metrics.NewTicklerMetrics().MustRegister()
	m.SetThrottle(c.Throttle.Seconds())
	if c.Prometheus != "" {
		s := metrics.NewServer(c.Prometheus, logger.Named("prometheus"))
		if err := s.Start(ctx); err != nil {
			return err
		}
		defer s.Shutdown(context.Background(), 5*time.Second)
	}

	s, err := session.Connect(ctx, c, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := schema.Resolve(ctx, schema.SystemSchema{Session: gocqlx.NewSession(s)}, c.Keyspace, c.Table)
	if err != nil {
		logger.Error(ctx, "Cannot repair table", "error", err)
		return err
	}

	var total int64
	if c.GuessTime {
		total = estimateTotal(ctx, c, t, m, logger.Named("estimate"))
	}

	stats := progress.NewStats(time.Now())
	out := cmd.OutOrStdout()

	opts := progress.Options{
		Every:  c.StatusInterval,
		Period: c.StatusPeriod,
	}
	if c.ProgressBar.Enabled(term.IsTerminal(int(os.Stderr.Fd()))) {
		opts.Bar = progress.NewBar(cmd.ErrOrStderr(), t.String(), total)
	}
	keys := progress.NewReporter(out, scan.Open(ctx, s, t, c.ScanConsistency, c.PageSize), stats, total, opts)

	d := readrepair.NewDriver(
		readrepair.Config{
			Throttle:  c.Throttle,
			KeepGoing: c.KeepGoing,
		},
		readrepair.NewCountRepairer(s, t, c.RepairConsistency),
		m,
		out,
		logger.Named("repair"),
	)
	return d.Run(ctx, t, keys, stats)
}

func estimateTotal(ctx context.Context, c config.Config, t schema.Table, m metrics.TicklerMetrics, logger log.Logger) int64 {
	v, ok := estimate.NewLocalNodetool(c.Nodetool, logger).EstimateTotal(ctx, t.Keyspace, t.Name)
	if !ok {
		return 0
	}
	m.SetEstimatedTotal(t.Keyspace, t.Name, v)
	return int64(v)
}
