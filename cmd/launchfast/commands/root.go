package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "launchfast",
	Short: "Product opportunity research backend",
	Long: `launchfast research CLI

Grades researched products, merges user overrides and keeps market
snapshots consistent.

Usage:
  go run ./cmd/launchfast [command]

Examples:
  go run ./cmd/launchfast api
  go run ./cmd/launchfast recalc --market <id> --user <id>
  go run ./cmd/launchfast scheduler
  go run ./cmd/launchfast status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
