// Copyright (C) 2017 ScyllaDB

package scan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/scylladb/tickler/pkg/schema"
)

type fakeRows struct {
	column string
	values []interface{}
	err    error
	pos    int
	closed bool
}

func (r *fakeRows) MapScan(m map[string]interface{}) bool {
	if r.pos >= len(r.values) {
		return false
	}
	m[r.column] = r.values[r.pos]
	r.pos++
	return true
}

func (r *fakeRows) Close() error {
	r.closed = true
	return r.err
}

func TestIterator(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{column: "id", values: []interface{}{1, 2, 3}}
	it := NewIterator(rows, "id")

	var keys []interface{}
	for it.Next() {
		keys = append(keys, it.Key())
	}
	if err := it.Close(); err != nil {
		t.Fatal("Close() error", err)
	}

	if diff := cmp.Diff([]interface{}{1, 2, 3}, keys); diff != "" {
		t.Fatal(diff)
	}
	if !rows.closed {
		t.Fatal("rows not closed")
	}
	if it.Key() != nil {
		t.Fatal("Key() after exhaustion", it.Key())
	}
}

func TestIteratorCloseError(t *testing.T) {
	t.Parallel()

	pageErr := errors.New("page fetch")
	it := NewIterator(&fakeRows{column: "id", values: []interface{}{"a"}, err: pageErr}, "id")
	for it.Next() {
	}
	if err := it.Close(); err != pageErr {
		t.Fatalf("Close() error %v, expected %v", err, pageErr)
	}
}

func TestStmt(t *testing.T) {
	t.Parallel()

	stmt := Stmt(schema.Table{Keyspace: "ks", Name: "Users", PrimaryKey: "id"})
	golden := `SELECT "id" FROM "ks"."Users"`
	if diff := cmp.Diff(golden, strings.TrimSpace(stmt)); diff != "" {
		t.Fatal(diff)
	}
}
