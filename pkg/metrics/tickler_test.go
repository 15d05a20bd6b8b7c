// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTicklerMetrics(t *testing.T) {
	m := NewTicklerMetrics()

	t.Run("AddRow", func(t *testing.T) {
		m.AddRow("ks", "users", "repaired")
		m.AddRow("ks", "users", "repaired")
		m.AddRow("ks", "users", "skipped")

		golden := `# HELP tickler_repair_rows_total Total number of rows read at the repair consistency level by outcome.
# TYPE tickler_repair_rows_total counter
tickler_repair_rows_total{keyspace="ks",outcome="repaired",table="users"} 2
tickler_repair_rows_total{keyspace="ks",outcome="skipped",table="users"} 1
`
		if diff := cmp.Diff(golden, dump(t, m.rows)); diff != "" {
			t.Error(diff)
		}
	})

	t.Run("SetEstimatedTotal", func(t *testing.T) {
		m.SetEstimatedTotal("ks", "users", 4800)
		m.SetThrottle(0.00005)

		golden := `# HELP tickler_repair_rows_estimated Estimated number of rows in the table.
# TYPE tickler_repair_rows_estimated gauge
tickler_repair_rows_estimated{keyspace="ks",table="users"} 4800
# HELP tickler_repair_throttle_seconds Pause between repair reads.
# TYPE tickler_repair_throttle_seconds gauge
tickler_repair_throttle_seconds 5e-05
`
		if diff := cmp.Diff(golden, dump(t, m.estimatedTotal, m.throttle)); diff != "" {
			t.Error(diff)
		}
	})
}
