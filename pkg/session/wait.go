// Copyright (C) 2017 ScyllaDB

package session

import (
	"context"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"go.uber.org/multierr"
)

// Waiter specifies waiting parameters.
type Waiter struct {
	Interval    time.Duration
	MaxAttempts int
	DialTimeout time.Duration
	Logger      log.Logger
}

var DefaultWaiter = Waiter{
	Interval:    time.Second,
	MaxAttempts: 5,
	DialTimeout: 5 * time.Second,
	Logger:      log.NopLogger,
}

// WaitAnyAddr tries to open a TCP connection to any of the provided addresses,
// returns first address it could connect to.
func (w Waiter) WaitAnyAddr(ctx context.Context, addr ...string) (string, error) {
	if len(addr) == 0 {
		return "", errors.New("no addresses")
	}

	attempts := w.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var a string
	op := func() error {
		v, err := w.tryConnectToAny(ctx, addr)
		if err != nil {
			return err
		}
		a = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		w.Logger.Info(ctx, "Waiting for network connection",
			"sleep", wait,
			"error", err,
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(w.Interval), uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", errors.Wrapf(err, "giving up after %d attempts", attempts)
	}
	return a, nil
}

// tryConnectToAny tries to open a TCP connection to any of the provided
// addresses, attempts are sequential, it returns first successful address or
// error if failed to connect to any address.
func (w Waiter) tryConnectToAny(ctx context.Context, addrs []string) (string, error) {
	d := net.Dialer{Timeout: w.DialTimeout}

	var errs error
	for _, addr := range addrs {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if conn != nil {
			conn.Close()
		}
		if err == nil {
			return addr, nil
		}
		errs = multierr.Append(errs, err)
	}
	return "", errs
}

// WaitAnyHostPort tries to connect to any of the hosts, returns first host if
// could connect to over the given port.
func (w Waiter) WaitAnyHostPort(ctx context.Context, hosts []string, port string) (string, error) {
	addr, err := w.WaitAnyAddr(ctx, joinHostsPort(hosts, port)...)
	if err != nil {
		return addr, err
	}

	host, _, _ := net.SplitHostPort(addr)
	return host, nil
}

func joinHostsPort(hosts []string, port string) []string {
	out := make([]string, len(hosts))
	for i, h := range hosts {
		out[i] = net.JoinHostPort(h, port)
	}
	return out
}
