package main

import (
	"os"

	"github.com/arya/tanya/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
