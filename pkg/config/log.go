// Copyright (C) 2017 ScyllaDB

package config

import (
	"github.com/scylladb/go-log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig specifies logger configuration options.
type LogConfig struct {
	Mode        log.Mode      `yaml:"mode"`
	Level       zapcore.Level `yaml:"level"`
	Encoding    log.Encoding  `yaml:"encoding"`
	Development bool          `yaml:"development"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Mode:     log.StderrMode,
		Level:    zapcore.WarnLevel,
		Encoding: log.ConsoleEncoding,
	}
}

// DriverLogVerbosity is the lowest verbosity at which the database driver
// log is shown.
const DriverLogVerbosity = 3

// LogLevel maps the number of -v flags to a log level.
func LogLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// MakeLogger creates application logger for the configuration.
func MakeLogger(c LogConfig) (log.Logger, error) {
	if c.Development {
		return log.NewDevelopmentWithLevel(c.Level), nil
	}
	return log.NewProduction(log.Config{
		Mode:     c.Mode,
		Level:    zap.NewAtomicLevelAt(c.Level),
		Encoding: c.Encoding,
	})
}
