// Copyright (C) 2017 ScyllaDB

package session

import (
	"context"
	"crypto/tls"
	"strconv"
	"strings"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/tickler/pkg/config"
)

// ClusterConfig returns gocql cluster configuration for c. Queries are not
// retried by the driver.
func ClusterConfig(c config.Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(c.Hosts...)
	cluster.Port = c.Port
	cluster.Consistency = c.ScanConsistency
	cluster.Timeout = c.Timeout
	cluster.PageSize = c.PageSize
	cluster.RetryPolicy = nil

	// SSL
	if c.SSL.Enabled {
		cluster.SslOpts = &gocql.SslOptions{
			Config: &tls.Config{
				MinVersion: c.SSL.TLSVersion.MinVersion(),
			},
			CaPath:                 c.SSL.CertFile,
			CertPath:               c.SSL.UserCertFile,
			KeyPath:                c.SSL.UserKeyFile,
			EnableHostVerification: c.SSL.Validate,
		}
	}

	// Authentication
	if c.User != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.User,
			Password: c.Password,
		}
	}

	fallback := gocql.RoundRobinHostPolicy()
	if c.LocalDC != "" {
		fallback = gocql.DCAwareRoundRobinPolicy(c.LocalDC)
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(fallback)

	return cluster
}

// Connect waits until any of the contact points accepts connections and
// opens a session.
func Connect(ctx context.Context, c config.Config, logger log.Logger) (*gocql.Session, error) {
	w := DefaultWaiter
	w.Logger = logger.Named("wait")

	host, err := w.WaitAnyHostPort(ctx, c.Hosts, strconv.Itoa(c.Port))
	if err != nil {
		return nil, errors.Wrapf(err, "no connection to %s, make sure Scylla is running and hosts and port are set correctly",
			strings.Join(c.Hosts, ", "))
	}

	logger.Info(ctx, "Connecting to cluster", "host", host, "port", c.Port, "ssl", c.SSL.Enabled)
	session, err := ClusterConfig(c).CreateSession()
	if err != nil {
		return nil, errors.Wrap(err, "create session")
	}
	return session, nil
}
