// Copyright (C) 2017 ScyllaDB

package schema

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
)

var (
	// ErrTableNotFound is returned when system_schema has no columns for
	// the requested table.
	ErrTableNotFound = errors.New("table not found")
	// ErrCompositeKey is returned for tables whose primary key is not a
	// single partition key column.
	ErrCompositeKey = errors.New("composite primary keys are not supported")
)

// Column kinds as recorded in system_schema.columns.
const (
	KindPartitionKey = "partition_key"
	KindClustering   = "clustering"
	KindRegular      = "regular"
	KindStatic       = "static"
)

// Table identifies the repair target. It is resolved once and never changes.
type Table struct {
	Keyspace   string
	Name       string
	PrimaryKey string
}

func (t Table) String() string {
	return t.Keyspace + "." + t.Name
}

// QualifiedName returns quoted "keyspace"."table" usable in CQL statements.
func (t Table) QualifiedName() string {
	return QuoteIdent(t.Keyspace) + "." + QuoteIdent(t.Name)
}

// QuotedPrimaryKey returns quoted primary key column name.
func (t Table) QuotedPrimaryKey() string {
	return QuoteIdent(t.PrimaryKey)
}

// QuoteIdent quotes CQL identifier so that case and reserved words are
// preserved.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Column is a system_schema.columns row.
type Column struct {
	Name     string `db:"column_name"`
	Kind     string `db:"kind"`
	Position int    `db:"position"`
}

// ColumnReader lists columns of a table.
type ColumnReader interface {
	Columns(ctx context.Context, keyspace, table string) ([]Column, error)
}

// SystemSchema reads columns from system_schema.columns.
type SystemSchema struct {
	Session gocqlx.Session
}

var _ ColumnReader = SystemSchema{}

// Columns implements ColumnReader.
func (s SystemSchema) Columns(ctx context.Context, keyspace, table string) ([]Column, error) {
	stmt, names := qb.Select("system_schema.columns").
		Columns("column_name", "kind", "position").
		Where(qb.Eq("keyspace_name"), qb.Eq("table_name")).
		ToCql()

	q := gocqlx.Query(s.Session.Session.Query(stmt).WithContext(ctx), names).Bind(keyspace, table)

	var cols []Column
	if err := q.SelectRelease(&cols); err != nil {
		return nil, errors.Wrap(err, "read system_schema.columns")
	}
	return cols, nil
}

// Resolve returns the Table for keyspace and table after making sure that
// the table has exactly one primary key column.
func Resolve(ctx context.Context, r ColumnReader, keyspace, table string) (Table, error) {
	cols, err := r.Columns(ctx, keyspace, table)
	if err != nil {
		return Table{}, err
	}
	pk, err := primaryKey(cols)
	if err != nil {
		return Table{}, errors.Wrapf(err, "%s.%s", keyspace, table)
	}
	return Table{
		Keyspace:   keyspace,
		Name:       table,
		PrimaryKey: pk,
	}, nil
}

func primaryKey(cols []Column) (string, error) {
	if len(cols) == 0 {
		return "", ErrTableNotFound
	}

	var partKey, clusteringKey []Column
	for _, c := range cols {
		switch c.Kind {
		case KindPartitionKey:
			partKey = append(partKey, c)
		case KindClustering:
			clusteringKey = append(clusteringKey, c)
		}
	}

	if len(partKey) == 0 {
		return "", errors.New("no partition key columns")
	}
	if len(partKey) > 1 || len(clusteringKey) > 0 {
		key := append(sortByPosition(partKey), sortByPosition(clusteringKey)...)
		return "", errors.Wrapf(ErrCompositeKey, "primary key (%s)", strings.Join(columnNames(key), ", "))
	}

	return partKey[0].Name, nil
}

func sortByPosition(cols []Column) []Column {
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Position < cols[j].Position
	})
	return cols
}

func columnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i := range cols {
		out[i] = cols[i].Name
	}
	return out
}
