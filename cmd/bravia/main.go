// Bravia controls Sony BRAVIA displays over the simple IP control protocol.
//
// It discovers displays with mDNS, reads and changes power, volume, mute,
// input and picture settings, sends remote control codes and keeps a
// registry of known displays. Running without arguments launches the
// full screen monitor.
//
// Usage:
//
//	bravia [command] [flags]
//
// See 'bravia --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/ui"
	"github.com/muurk/bravia/internal/urls"
	"github.com/muurk/bravia/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if outputFormat == formatJSON {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			ui.NewPrinter(os.Stderr).PrintError("Command failed", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bravia",
	Short: "BRAVIA Simple IP Control Utility",
	Long: `A command line client for Sony BRAVIA professional displays.

Talks to displays over the simple IP control protocol (TCP port 20060).
Enable it on the display under Network > Home network setup > IP control.
Protocol guide: ` + urls.SimpleIPControl + `

If no command is specified, the full screen monitor will launch.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, args)
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
		fmt.Printf("bravia %s (commit: %s)\n", version.Version, version.Commit)
	},
}
