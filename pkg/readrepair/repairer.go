// Copyright (C) 2017 ScyllaDB

package readrepair

import (
	"context"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/tickler/pkg/schema"
)

//go:generate mockgen -destination mock_repairer_test.go -mock_names Repairer=MockRepairer -package readrepair github.com/scylladb/tickler/pkg/readrepair Repairer

// Repairer reads a single row so that the coordinator reconciles its
// replicas.
type Repairer interface {
	Repair(ctx context.Context, key interface{}) error
}

// Stmt returns CQL statement counting rows of t with a given primary key.
func Stmt(t schema.Table) string {
	stmt, _ := qb.Select(t.QualifiedName()).
		CountAll().
		Where(qb.Eq(t.QuotedPrimaryKey())).
		ToCql()
	return stmt
}

// CountRepairer repairs rows by counting them at a consistency level that
// requires responses from all replicas. Any replica holding stale data is
// fixed by the coordinator before the count is returned.
type CountRepairer struct {
	session *gocql.Session
	stmt    string
	cl      gocql.Consistency
}

var _ Repairer = &CountRepairer{}

// NewCountRepairer returns a CountRepairer for t. The statement is prepared
// by the session on first use and reused for every row.
func NewCountRepairer(session *gocql.Session, t schema.Table, cl gocql.Consistency) *CountRepairer {
	return &CountRepairer{
		session: session,
		stmt:    Stmt(t),
		cl:      cl,
	}
}

// Repair implements Repairer. The query is never retried.
func (r *CountRepairer) Repair(ctx context.Context, key interface{}) error {
	q := r.session.Query(r.stmt, key).
		WithContext(ctx).
		Consistency(r.cl).
		RetryPolicy(nil).
		Idempotent(true)
	defer q.Release()

	var count int64
	return q.Scan(&count)
}

// IsRecoverable returns true if err is a per row failure to reach the
// requested consistency level. Such a row may be skipped, any other error
// means the run cannot continue.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gocql.ErrTimeoutNoResponse) {
		return true
	}
	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Code() {
		case gocql.ErrCodeReadTimeout, gocql.ErrCodeUnavailable, gocql.ErrCodeReadFailure:
			return true
		}
	}
	return false
}
