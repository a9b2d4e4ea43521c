// Package main is the carbonctl administration CLI.
package main

import (
	"fmt"
	"os"

	"carbonyx/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
