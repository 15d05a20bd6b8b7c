// Copyright (C) 2017 ScyllaDB

package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/go-cmp/cmp"
	"github.com/scylladb/tickler/pkg/config"
	"github.com/scylladb/tickler/pkg/progress"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// execute runs the command with args and returns configuration it would
// run with.
func execute(t *testing.T, args ...string) (config.Config, rootArgs, error) {
	t.Helper()

	var (
		c config.Config
		a rootArgs
	)
	cmd := newCommand(func(_ *cobra.Command, cc config.Config, aa rootArgs) error {
		c, a = cc, aa
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	return c, a, err
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()
	if !strings.HasPrefix(cmd.Use, "tickler") {
		t.Fatalf("Use = %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" || cmd.Example == "" {
		t.Fatal("missing command description")
	}
	if f := cmd.Flags().Lookup("throttle"); f.DefValue != "50" {
		t.Fatalf("throttle default %s, expected 50", f.DefValue)
	}
	if f := cmd.Flags().Lookup("status-interval"); f.DefValue != strconv.Itoa(progress.DefaultEvery) {
		t.Fatalf("status-interval default %s, expected %d", f.DefValue, progress.DefaultEvery)
	}
}

func TestRootConfigDefaults(t *testing.T) {
	c, _, err := execute(t, "ks", "users")
	if err != nil {
		t.Fatal(err)
	}

	golden := config.Default()
	golden.Keyspace = "ks"
	golden.Table = "users"
	if diff := cmp.Diff(golden, c); diff != "" {
		t.Fatal(diff)
	}
}

func TestRootConfigFlags(t *testing.T) {
	c, a, err := execute(t,
		"-i", "192.168.100.11", "--ip", "192.168.100.12",
		"-p", "19042",
		"-t", "1000",
		"--keep-going",
		"--guess-time",
		"-n", "10",
		"-vv",
		"--repair-consistency", "local_quorum",
		"--progress-bar", "never",
		"ks", "users",
	)
	if err != nil {
		t.Fatal(err)
	}

	golden := config.Default()
	golden.Keyspace = "ks"
	golden.Table = "users"
	golden.Hosts = []string{"192.168.100.11", "192.168.100.12"}
	golden.Port = 19042
	golden.Throttle = time.Millisecond
	golden.KeepGoing = true
	golden.GuessTime = true
	golden.StatusInterval = 10
	golden.Logger.Level = zapcore.DebugLevel
	golden.RepairConsistency = gocql.LocalQuorum
	golden.ProgressBar = config.ProgressBarNever
	if diff := cmp.Diff(golden, c); diff != "" {
		t.Fatal(diff)
	}
	if a.verbose != 2 {
		t.Fatalf("verbose = %d, expected 2", a.verbose)
	}
}

func TestRootConfigFileOverriddenByFlags(t *testing.T) {
	c, _, err := execute(t,
		"-c", "../../config/testdata/tickler.yaml",
		"--throttle", "0",
		"--keep-going=false",
		"ks2",
	)
	if err != nil {
		t.Fatal(err)
	}
	if c.Keyspace != "ks2" || c.Table != "users" {
		t.Fatalf("target %s.%s, expected ks2.users", c.Keyspace, c.Table)
	}
	if c.Throttle != 0 || c.KeepGoing {
		t.Fatalf("Throttle = %s KeepGoing = %v, expected flags to win", c.Throttle, c.KeepGoing)
	}
	if c.Port != 19042 {
		t.Fatalf("Port = %d, expected value from file", c.Port)
	}
}

func TestRootConfigErrors(t *testing.T) {
	table := []struct {
		Name string
		Args []string
	}{
		{Name: "missing table", Args: []string{"ks"}},
		{Name: "too many args", Args: []string{"ks", "users", "extra"}},
		{Name: "negative throttle", Args: []string{"-t", "-1", "ks", "users"}},
		{Name: "bad consistency", Args: []string{"--scan-consistency", "most", "ks", "users"}},
		{Name: "bad progress bar", Args: []string{"--progress-bar", "sometimes", "ks", "users"}},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			if _, _, err := execute(t, test.Args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	buf := new(bytes.Buffer)
	printError(buf, errTest("connection refused"))
	if diff := cmp.Diff("Error: connection refused\n", buf.String()); diff != "" {
		t.Fatal(diff)
	}
}

type errTest string

func (e errTest) Error() string {
	return string(e)
}
