package main

import (
	"os"

	"github.com/secureops-systems/secureops/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
