// Copyright (C) 2017 ScyllaDB

package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		printError(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
	os.Exit(0)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}
