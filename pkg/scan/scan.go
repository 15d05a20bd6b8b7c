// Copyright (C) 2017 ScyllaDB

package scan

import (
	"context"

	"github.com/gocql/gocql"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/tickler/pkg/schema"
)

// DefaultPageSize is the number of rows fetched per page of the scan.
const DefaultPageSize = 1000

// Iterator is a forward-only, single-pass sequence of primary key values.
// Next must be called before every Key, Close releases the underlying
// resources and reports the first error encountered by the sequence.
type Iterator interface {
	Next() bool
	Key() interface{}
	Close() error
}

// Rows is a source of rows, it is satisfied by *gocql.Iter.
type Rows interface {
	MapScan(m map[string]interface{}) bool
	Close() error
}

// NewIterator returns an Iterator yielding values of column from rows.
func NewIterator(rows Rows, column string) Iterator {
	return &rowIterator{
		rows:   rows,
		column: column,
	}
}

type rowIterator struct {
	rows   Rows
	column string
	key    interface{}
}

func (it *rowIterator) Next() bool {
	m := make(map[string]interface{}, 1)
	if !it.rows.MapScan(m) {
		it.key = nil
		return false
	}
	it.key = m[it.column]
	return true
}

func (it *rowIterator) Key() interface{} {
	return it.key
}

func (it *rowIterator) Close() error {
	return it.rows.Close()
}

// Stmt returns CQL statement selecting primary key of every row in t.
func Stmt(t schema.Table) string {
	stmt, _ := qb.Select(t.QualifiedName()).Columns(t.QuotedPrimaryKey()).ToCql()
	return stmt
}

// Open starts a full scan of t with server side paging. Pages are fetched
// lazily as the returned Iterator advances. The scan is never retried,
// a failed page fetch ends the sequence and the error is returned by Close.
func Open(ctx context.Context, session *gocql.Session, t schema.Table, cl gocql.Consistency, pageSize int) Iterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := session.Query(Stmt(t)).
		WithContext(ctx).
		Consistency(cl).
		PageSize(pageSize).
		RetryPolicy(nil)
	return NewIterator(q.Iter(), t.PrimaryKey)
}
