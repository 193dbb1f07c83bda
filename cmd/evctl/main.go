package main

import (
	"os"

	"ev-dashboard/cmd/evctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
