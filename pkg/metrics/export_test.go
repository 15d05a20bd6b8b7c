// Copyright (C) 2017 ScyllaDB

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// dump returns collected metrics in the text exposition format.
func dump(t *testing.T, c ...prometheus.Collector) string {
	t.Helper()

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(c...)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %s", err)
	}

	var sb strings.Builder
	enc := expfmt.NewEncoder(&sb, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			t.Fatalf("encode %s: %s", mf.GetName(), err)
		}
	}
	return sb.String()
}
