// Copyright (C) 2017 ScyllaDB

package config

import (
	"os"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/scylladb/tickler/pkg/progress"
	"github.com/scylladb/tickler/pkg/scan"
	uberconfig "go.uber.org/config"
	"go.uber.org/multierr"
)

// ProgressBarMode specifies when the terminal progress bar is shown.
type ProgressBarMode string

// ProgressBarMode enumeration.
const (
	ProgressBarAuto   ProgressBarMode = "auto"
	ProgressBarAlways ProgressBarMode = "always"
	ProgressBarNever  ProgressBarMode = "never"
)

func (m ProgressBarMode) MarshalText() (text []byte, err error) {
	return []byte(m), nil
}

func (m *ProgressBarMode) UnmarshalText(text []byte) error {
	switch v := ProgressBarMode(strings.ToLower(string(text))); v {
	case ProgressBarAuto, ProgressBarAlways, ProgressBarNever:
		*m = v
	default:
		return errors.Errorf("unsupported progress bar mode %q", string(text))
	}
	return nil
}

// Enabled returns true if the bar shall be shown, isTerminal tells if the
// output is a terminal.
func (m ProgressBarMode) Enabled(isTerminal bool) bool {
	switch m {
	case ProgressBarAlways:
		return true
	case ProgressBarNever:
		return false
	default:
		return isTerminal
	}
}

// SSLConfig specifies client encryption options.
type SSLConfig struct {
	Enabled      bool       `yaml:"enabled"`
	CertFile     string     `yaml:"cert_file"`
	Validate     bool       `yaml:"validate"`
	UserCertFile string     `yaml:"user_cert_file"`
	UserKeyFile  string     `yaml:"user_key_file"`
	TLSVersion   TLSVersion `yaml:"tls_version"`
}

// Config contains configuration of a single tickler run.
type Config struct {
	Hosts    []string `yaml:"hosts"`
	Port     int      `yaml:"port"`
	Keyspace string   `yaml:"keyspace"`
	Table    string   `yaml:"table"`

	Throttle       time.Duration `yaml:"throttle"`
	KeepGoing      bool          `yaml:"keep_going"`
	GuessTime      bool          `yaml:"guess_time"`
	StatusInterval int64         `yaml:"status_interval"`
	StatusPeriod   time.Duration `yaml:"status_period"`

	ScanConsistency   gocql.Consistency `yaml:"scan_consistency"`
	RepairConsistency gocql.Consistency `yaml:"repair_consistency"`
	PageSize          int               `yaml:"page_size"`
	Timeout           time.Duration     `yaml:"timeout"`
	User              string            `yaml:"user"`
	Password          string            `yaml:"password"`
	SSL               SSLConfig         `yaml:"ssl"`
	LocalDC           string            `yaml:"local_dc"`

	Nodetool    string          `yaml:"nodetool"`
	ProgressBar ProgressBarMode `yaml:"progress_bar"`
	Prometheus  string          `yaml:"prometheus"`
	Logger      LogConfig       `yaml:"logger"`
}

// DefaultThrottle is the pause between rows if not configured otherwise.
const DefaultThrottle = 50 * time.Microsecond

func Default() Config {
	return Config{
		Hosts:             []string{"127.0.0.1"},
		Port:              9042,
		Throttle:          DefaultThrottle,
		StatusInterval:    progress.DefaultEvery,
		ScanConsistency:   gocql.Quorum,
		RepairConsistency: gocql.All,
		PageSize:          scan.DefaultPageSize,
		Timeout:           10 * time.Second,
		SSL: SSLConfig{
			Validate:   true,
			TLSVersion: TLSv12,
		},
		Nodetool:    "nodetool",
		ProgressBar: ProgressBarAuto,
		Logger:      DefaultLogConfig(),
	}
}

// ParseConfigFiles takes list of configuration file paths and returns parsed
// config struct with merged configuration from all provided files.
// Values in subsequent files override values in the preceding ones, missing
// files are skipped.
func ParseConfigFiles(files []string) (Config, error) {
	c := Default()

	var opts []uberconfig.YAMLOption
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return c, err
		}
		opts = append(opts, uberconfig.File(f))
	}
	if len(opts) == 0 {
		return c, nil
	}

	cfg, err := uberconfig.NewYAML(opts...)
	if err != nil {
		return c, err
	}
	return c, cfg.Get(uberconfig.Root).Populate(&c)
}

// ConsistencyNames lists consistency levels accepted by ParseConsistency.
var ConsistencyNames = strset.New(
	"ANY", "ONE", "TWO", "THREE", "QUORUM", "ALL",
	"LOCAL_QUORUM", "EACH_QUORUM", "LOCAL_ONE",
)

// ParseConsistency returns consistency level of a given name, the name is
// case insensitive.
func ParseConsistency(s string) (gocql.Consistency, error) {
	if !ConsistencyNames.Has(strings.ToUpper(s)) {
		return 0, errors.Errorf("unsupported consistency level %q", s)
	}
	return gocql.ParseConsistencyWrapper(s)
}

// Validate returns all problems found in the configuration.
func (c Config) Validate() (err error) {
	if c.Keyspace == "" {
		err = multierr.Append(err, errors.New("missing keyspace"))
	}
	if c.Table == "" {
		err = multierr.Append(err, errors.New("missing table"))
	}
	if len(c.Hosts) == 0 {
		err = multierr.Append(err, errors.New("missing hosts"))
	}
	for _, h := range c.Hosts {
		if strings.TrimSpace(h) == "" {
			err = multierr.Append(err, errors.New("empty host"))
			break
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, errors.Errorf("invalid port %d", c.Port))
	}
	if c.Throttle < 0 {
		err = multierr.Append(err, errors.Errorf("invalid throttle %s < 0", c.Throttle))
	}
	if c.StatusInterval < 1 {
		err = multierr.Append(err, errors.Errorf("invalid status_interval %d < 1", c.StatusInterval))
	}
	if c.StatusPeriod < 0 {
		err = multierr.Append(err, errors.Errorf("invalid status_period %s < 0", c.StatusPeriod))
	}
	if c.PageSize < 1 {
		err = multierr.Append(err, errors.Errorf("invalid page_size %d < 1", c.PageSize))
	}
	if c.Timeout <= 0 {
		err = multierr.Append(err, errors.Errorf("invalid timeout %s <= 0", c.Timeout))
	}
	if !ConsistencyNames.Has(c.ScanConsistency.String()) {
		err = multierr.Append(err, errors.Errorf("unsupported scan_consistency %s", c.ScanConsistency))
	}
	if !ConsistencyNames.Has(c.RepairConsistency.String()) {
		err = multierr.Append(err, errors.Errorf("unsupported repair_consistency %s", c.RepairConsistency))
	}
	if c.SSL.UserKeyFile != "" && c.SSL.UserCertFile == "" {
		err = multierr.Append(err, errors.New("ssl.user_key_file set without ssl.user_cert_file"))
	}
	if c.GuessTime && c.Nodetool == "" {
		err = multierr.Append(err, errors.New("missing nodetool"))
	}
	var m ProgressBarMode
	if e := m.UnmarshalText([]byte(c.ProgressBar)); e != nil {
		err = multierr.Append(err, e)
	}
	return err
}

// Obfuscated returns Config with secrets replaced with ******.
func (c Config) Obfuscated() Config {
	c.Password = strings.Repeat("*", len(c.Password))
	return c
}
