package main

import (
	"os"

	"github.com/hirewire/loadgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
