package main

import (
	"os"

	"github.com/rodeoai/ingest/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
