// Copyright (C) 2017 ScyllaDB

package estimate

import (
	"context"
	"net"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-set/strset"
)

// Estimator guesses the number of rows in a table. The result is a rough
// order of magnitude hint, the second value is false if no guess could be
// made.
type Estimator interface {
	EstimateTotal(ctx context.Context, keyspace, table string) (float64, bool)
}

// DefaultNodetoolPath is the nodetool binary looked up in PATH.
const DefaultNodetoolPath = "nodetool"

// Nodetool estimates the number of rows of a table from the local replica
// key estimate reported by nodetool and the ownership of the local node.
// It must run on a cluster node.
type Nodetool struct {
	path   string
	addrs  *strset.Set
	logger log.Logger

	execCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

var _ Estimator = &Nodetool{}

// NewLocalNodetool returns a Nodetool estimator for the node running on
// this host. Failure to list local addresses is logged, the estimator then
// assumes 100% ownership.
func NewLocalNodetool(path string, logger log.Logger) *Nodetool {
	addrs, err := localAddrs()
	n := NewNodetool(path, addrs, logger)
	if err != nil {
		n.warn("Failed to list local addresses, assuming 100% ownership", "error", err)
	}
	return n
}

// NewNodetool returns a Nodetool estimator, addrs are the addresses under
// which the local node may be listed in nodetool status.
func NewNodetool(path string, addrs []string, logger log.Logger) *Nodetool {
	if path == "" {
		path = DefaultNodetoolPath
	}
	s := strset.New()
	for _, a := range addrs {
		s.Add(normalizeAddr(a))
	}
	return &Nodetool{
		path:        path,
		addrs:       s,
		logger:      logger,
		execCommand: combinedOutput,
	}
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "%s %v: %s", name, args, out)
	}
	return out, nil
}

// errZeroOwnership is returned by OwnershipFraction when the local node owns
// no part of the token ring, no total can be extrapolated then.
var errZeroOwnership = errors.New("zero ownership")

// EstimateTotal implements Estimator. Failures are logged and never
// returned. If the ownership of the local node is unknown it is assumed to
// be 100%, which underestimates the total on multi node clusters. If the
// local node owns nothing no estimate is made.
func (n *Nodetool) EstimateTotal(ctx context.Context, keyspace, table string) (float64, bool) {
	local, err := n.LocalEstimate(ctx, keyspace, table)
	if err != nil {
		n.warn("Failed to estimate number of keys, time remaining will not be shown",
			"keyspace", keyspace,
			"table", table,
			"error", err,
		)
		return 0, false
	}

	f, err := n.OwnershipFraction(ctx, keyspace)
	if errors.Is(err, errZeroOwnership) {
		n.warn("Local node owns no tokens, time remaining will not be shown",
			"keyspace", keyspace,
			"error", err,
		)
		return 0, false
	}
	if err != nil {
		n.warn("Failed to determine ownership of the local node, assuming 100%",
			"keyspace", keyspace,
			"error", err,
		)
		f = 1
	}

	total := Extrapolate(local, f)
	n.logger.Info(ctx, "Estimated number of keys",
		"keyspace", keyspace,
		"table", table,
		"local", local,
		"ownership", f,
		"total", total,
	)
	return total, true
}

// LocalEstimate returns the key estimate of the local replica of a table.
func (n *Nodetool) LocalEstimate(ctx context.Context, keyspace, table string) (float64, error) {
	name := keyspace + "." + table

	out, err := n.execCommand(ctx, n.path, "tablestats", name)
	if err != nil {
		// Old nodetool versions only know cfstats
		var cfErr error
		out, cfErr = n.execCommand(ctx, n.path, "cfstats", name)
		if cfErr != nil {
			return 0, errors.Wrap(err, "tablestats")
		}
	}
	return parseKeyEstimate(out)
}

// OwnershipFraction returns the effective ownership of the local node of
// the keyspace token ring as a number in (0, 1].
func (n *Nodetool) OwnershipFraction(ctx context.Context, keyspace string) (float64, error) {
	if n.addrs.IsEmpty() {
		return 0, errors.New("no local addresses")
	}

	out, err := n.execCommand(ctx, n.path, "status", keyspace)
	if err != nil {
		return 0, errors.Wrap(err, "status")
	}
	status, err := parseStatus(out)
	if err != nil {
		return 0, errors.Wrap(err, "parse status")
	}

	node, ok := status.Host(func(addr string) bool {
		return n.addrs.Has(addr)
	})
	if !ok {
		return 0, errors.Errorf("local node %s not found in status", n.addrs)
	}
	if !node.Normal() {
		n.warn("Local node is not up and normal, estimate may be off",
			"node", node.Addr,
			"datacenter", node.Datacenter,
			"status", node.Code(),
		)
	}
	if !node.OwnsKnown() {
		return 0, errors.Errorf("ownership of %s not reported", node.Addr)
	}
	if node.Owns == 0 {
		return 0, errors.Wrapf(errZeroOwnership, "%s", node.Addr)
	}
	if node.Owns > 100 {
		return 0, errors.Errorf("invalid ownership %v%% of %s", node.Owns, node.Addr)
	}
	return node.Owns / 100, nil
}

// Extrapolate returns the cluster wide total given local estimate and
// ownership fraction f of the local node. Fractions outside of (0, 1] are
// treated as 1.
func Extrapolate(local, f float64) float64 {
	if f <= 0 || f > 1 {
		return local
	}
	return local / f
}

var localAddrs = LocalAddrs

// LocalAddrs returns IP addresses of all network interfaces of this host.
func LocalAddrs() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok {
			out = append(out, ipnet.IP.String())
		}
	}
	return out, nil
}

// warn logs at warning level, log.Logger has no such method.
func (n *Nodetool) warn(msg string, keyvals ...interface{}) {
	if base := log.BaseOf(n.logger); base != nil {
		base.Sugar().Warnw(msg, keyvals...)
	}
}
