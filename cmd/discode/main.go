// Package main provides the entry point for the discode CLI.
package main

import (
	"fmt"
	"os"

	"github.com/opencode-ai/discode/cmd/discode/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
