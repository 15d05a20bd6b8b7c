// Copyright (C) 2017 ScyllaDB

package main

import (
	"strings"

	"github.com/scylladb/go-set/strset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

var keywords = strset.New(
	"use",
	"short",
	"long",
	"example",
)

// mustSetUsages takes a yaml encoded mapping from flag name to usage.
// It ensures that all flags have usage and the mapping does not contain
// unrelated items.
func mustSetUsages(cmd *cobra.Command, b []byte) {
	u := make(map[string]string)
	if err := yaml.Unmarshal(b, u); err != nil {
		panic(err)
	}

	fs := cmd.Flags()
	for k, v := range u {
		if keywords.Has(k) {
			continue
		}
		f := fs.Lookup(k)
		if f == nil {
			panic("missing flag " + k)
		}
		f.Usage = strings.TrimSuffix(v, "\n")
	}
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Usage == "" && f.Name != "help" {
			panic("no usage for flag " + f.Name)
		}
	})
}
