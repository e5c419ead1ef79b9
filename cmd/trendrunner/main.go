package main

import (
	"os"

	"github.com/rustyeddy/trendrunner/cmd/trendrunner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
