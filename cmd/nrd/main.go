package main

import (
	"os"

	"github.com/ndn-tools/nrd/internal/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		os.Exit(1)
	}
}
