// Ubxcfg is a configuration snapshot and restore utility for u-blox
// generation 9+ GNSS receivers.
//
// It saves a receiver's complete configuration to a binary transaction file
// over the UBX protocol (CFG-VALGET) and restores it later as a single
// atomic device-side transaction (CFG-VALSET). Receivers can be reached over
// a local serial port, a raw TCP bridge, or a WebSocket bridge.
//
// Usage:
//
//	ubxcfg [command] [flags]
//
// See 'ubxcfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/ubxcfg/internal/logging"
	"github.com/muurk/ubxcfg/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ubxcfg",
	Short: "u-blox Receiver Configuration Utility",
	Long: `A standalone utility for saving and restoring u-blox receiver configuration.

Saves the device configuration of a generation 9+ receiver to a file and
loads it back onto a device as one atomic transaction. Supports local serial
ports as well as TCP and WebSocket serial bridges.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ubxcfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
