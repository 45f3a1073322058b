package main

import (
	"os"

	"github.com/gapscan/gapscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
