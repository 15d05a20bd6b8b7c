// Copyright (C) 2017 ScyllaDB

package schema

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type columnsFunc func(ctx context.Context, keyspace, table string) ([]Column, error)

func (f columnsFunc) Columns(ctx context.Context, keyspace, table string) ([]Column, error) {
	return f(ctx, keyspace, table)
}

func staticColumns(cols ...Column) ColumnReader {
	return columnsFunc(func(_ context.Context, _, _ string) ([]Column, error) {
		return cols, nil
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	table := []struct {
		Name    string
		Columns []Column
		Golden  Table
		Err     error
	}{
		{
			Name: "single partition key",
			Columns: []Column{
				{Name: "id", Kind: KindPartitionKey},
				{Name: "name", Kind: KindRegular, Position: -1},
				{Name: "email", Kind: KindRegular, Position: -1},
			},
			Golden: Table{Keyspace: "ks", Name: "users", PrimaryKey: "id"},
		},
		{
			Name: "static column is ignored",
			Columns: []Column{
				{Name: "UserID", Kind: KindPartitionKey},
				{Name: "s", Kind: KindStatic, Position: -1},
			},
			Golden: Table{Keyspace: "ks", Name: "users", PrimaryKey: "UserID"},
		},
		{
			Name: "composite partition key",
			Columns: []Column{
				{Name: "b", Kind: KindPartitionKey, Position: 1},
				{Name: "a", Kind: KindPartitionKey, Position: 0},
			},
			Err: ErrCompositeKey,
		},
		{
			Name: "clustering key",
			Columns: []Column{
				{Name: "id", Kind: KindPartitionKey},
				{Name: "ts", Kind: KindClustering},
			},
			Err: ErrCompositeKey,
		},
		{
			Name: "no such table",
			Err:  ErrTableNotFound,
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(context.Background(), staticColumns(test.Columns...), "ks", "users")
			if test.Err != nil {
				if errors.Cause(err) != test.Err {
					t.Fatalf("Resolve() error %v, expected %v", err, test.Err)
				}
				return
			}
			if err != nil {
				t.Fatal("Resolve() error", err)
			}
			if diff := cmp.Diff(test.Golden, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestResolveCompositeKeyMessage(t *testing.T) {
	t.Parallel()

	r := staticColumns(
		Column{Name: "b", Kind: KindPartitionKey, Position: 1},
		Column{Name: "a", Kind: KindPartitionKey, Position: 0},
		Column{Name: "c", Kind: KindClustering, Position: 0},
	)
	_, err := Resolve(context.Background(), r, "ks", "t")
	if err == nil {
		t.Fatal("expected error")
	}
	golden := "ks.t: primary key (a, b, c): composite primary keys are not supported"
	if diff := cmp.Diff(golden, err.Error()); diff != "" {
		t.Fatal(diff)
	}
}

func TestResolveReaderError(t *testing.T) {
	t.Parallel()

	readErr := errors.New("no connection")
	r := columnsFunc(func(_ context.Context, _, _ string) ([]Column, error) {
		return nil, readErr
	})
	if _, err := Resolve(context.Background(), r, "ks", "t"); errors.Cause(err) != readErr {
		t.Fatalf("Resolve() error %v, expected %v", err, readErr)
	}
}

func TestTableNames(t *testing.T) {
	t.Parallel()

	tab := Table{Keyspace: "ks", Name: `My"Table`, PrimaryKey: "id"}

	if diff := cmp.Diff(`"ks"."My""Table"`, tab.QualifiedName()); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff(`"id"`, tab.QuotedPrimaryKey()); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff(`ks.My"Table`, tab.String()); diff != "" {
		t.Error(diff)
	}
}
