// Package main provides the entry point for the rlzap CLI.
package main

import (
	"os"

	"github.com/jameslz/rlzap/cmd/rlzap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
