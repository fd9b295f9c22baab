// Package main provides the CLI for the sonoprop beam propagation engine.
package main

import (
	"os"

	"github.com/leapstack-labs/sonoprop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
