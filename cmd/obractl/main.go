// Package main is the entry point for the obractl admin tool.
package main

import (
	"os"

	"github.com/obra-coop/obranet/cmd/obractl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
