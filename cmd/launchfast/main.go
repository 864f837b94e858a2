package main

import (
	"os"

	"github.com/BlockchainHB/launchfast-sub005/cmd/launchfast/commands"
)

// main is the entry point for the launchfast research CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
