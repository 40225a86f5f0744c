package main

import (
	"os"

	"github.com/cherseta/chersey/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
