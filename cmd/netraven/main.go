// Package main is the entry point for the netraven CLI, a thin
// demonstration collaborator over the internal/scan, internal/osfp,
// internal/tracert, and internal/svcdetect engine packages — modeled on
// the teacher's cmd/poros/main.go.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	SetVersion(version, commit, date)

	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
