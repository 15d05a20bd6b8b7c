// Copyright (C) 2017 ScyllaDB

package main

import (
	_ "embed"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/tickler/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

//go:embed res.yaml
var res []byte

type rootArgs struct {
	configFiles       []string
	hosts             []string
	port              int
	throttle          int64
	keepGoing         bool
	guessTime         bool
	statusInterval    int64
	statusPeriod      time.Duration
	verbose           int
	user              string
	password          string
	ssl               bool
	localDC           string
	scanConsistency   string
	repairConsistency string
	pageSize          int
	timeout           time.Duration
	nodetool          string
	progressBar       string
	prometheus        string
}

type runFunc func(cmd *cobra.Command, c config.Config, a rootArgs) error

func newRootCommand() *cobra.Command {
	return newCommand(run)
}

func newCommand(runE runFunc) *cobra.Command {
	var (
		a   rootArgs
		cmd = &cobra.Command{}
	)
	if err := yaml.Unmarshal(res, cmd); err != nil {
		panic(err)
	}
	cmd.Args = cobra.MaximumNArgs(2)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	d := config.Default()
	f := cmd.Flags()
	f.SortFlags = false
	f.StringSliceVarP(&a.configFiles, "config-file", "c", nil, "")
	f.StringSliceVarP(&a.hosts, "ip", "i", d.Hosts, "")
	f.IntVarP(&a.port, "port", "p", d.Port, "")
	f.Int64VarP(&a.throttle, "throttle", "t", d.Throttle.Microseconds(), "")
	f.BoolVar(&a.keepGoing, "keep-going", d.KeepGoing, "")
	f.BoolVar(&a.guessTime, "guess-time", d.GuessTime, "")
	f.Int64VarP(&a.statusInterval, "status-interval", "n", d.StatusInterval, "")
	f.DurationVar(&a.statusPeriod, "status-period", d.StatusPeriod, "")
	f.CountVarP(&a.verbose, "verbose", "v", "")
	f.StringVarP(&a.user, "user", "u", d.User, "")
	f.StringVar(&a.password, "password", d.Password, "")
	f.BoolVar(&a.ssl, "ssl", d.SSL.Enabled, "")
	f.StringVar(&a.localDC, "local-dc", d.LocalDC, "")
	f.StringVar(&a.scanConsistency, "scan-consistency", d.ScanConsistency.String(), "")
	f.StringVar(&a.repairConsistency, "repair-consistency", d.RepairConsistency.String(), "")
	f.IntVar(&a.pageSize, "page-size", d.PageSize, "")
	f.DurationVar(&a.timeout, "timeout", d.Timeout, "")
	f.StringVar(&a.nodetool, "nodetool", d.Nodetool, "")
	f.StringVar(&a.progressBar, "progress-bar", string(d.ProgressBar), "")
	f.StringVar(&a.prometheus, "prometheus", d.Prometheus, "")
	mustSetUsages(cmd, res)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.config(cmd, args)
		if err != nil {
			return err
		}
		return runE(cmd, c, a)
	}
	return cmd
}

// config reads configuration files and applies flags set on the command
// line and positional arguments on top of them.
func (a rootArgs) config(cmd *cobra.Command, args []string) (config.Config, error) {
	c, err := config.ParseConfigFiles(a.configFiles)
	if err != nil {
		return c, errors.Wrapf(err, "configuration %q", a.configFiles)
	}

	f := cmd.Flags()
	if f.Changed("ip") {
		c.Hosts = a.hosts
	}
	if f.Changed("port") {
		c.Port = a.port
	}
	if f.Changed("throttle") {
		c.Throttle = time.Duration(a.throttle) * time.Microsecond
	}
	if f.Changed("keep-going") {
		c.KeepGoing = a.keepGoing
	}
	if f.Changed("guess-time") {
		c.GuessTime = a.guessTime
	}
	if f.Changed("status-interval") {
		c.StatusInterval = a.statusInterval
	}
	if f.Changed("status-period") {
		c.StatusPeriod = a.statusPeriod
	}
	if f.Changed("verbose") {
		c.Logger.Level = config.LogLevel(a.verbose)
	}
	if f.Changed("user") {
		c.User = a.user
	}
	if f.Changed("password") {
		c.Password = a.password
	}
	if f.Changed("ssl") {
		c.SSL.Enabled = a.ssl
	}
	if f.Changed("local-dc") {
		c.LocalDC = a.localDC
	}
	if f.Changed("scan-consistency") {
		if c.ScanConsistency, err = config.ParseConsistency(a.scanConsistency); err != nil {
			return c, errors.Wrap(err, "scan-consistency")
		}
	}
	if f.Changed("repair-consistency") {
		if c.RepairConsistency, err = config.ParseConsistency(a.repairConsistency); err != nil {
			return c, errors.Wrap(err, "repair-consistency")
		}
	}
	if f.Changed("page-size") {
		c.PageSize = a.pageSize
	}
	if f.Changed("timeout") {
		c.Timeout = a.timeout
	}
	if f.Changed("nodetool") {
		c.Nodetool = a.nodetool
	}
	if f.Changed("progress-bar") {
		if err := c.ProgressBar.UnmarshalText([]byte(a.progressBar)); err != nil {
			return c, errors.Wrap(err, "progress-bar")
		}
	}
	if f.Changed("prometheus") {
		c.Prometheus = a.prometheus
	}

	if len(args) > 0 {
		c.Keyspace = args[0]
	}
	if len(args) > 1 {
		c.Table = args[1]
	}

	if err := c.Validate(); err != nil {
		return c, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}
