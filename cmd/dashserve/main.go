// Package main is the entry point for the dashserve CLI.
//
// Usage:
//
//	dashserve                          # Serve the executable's directory on :3001
//	dashserve --port 4000 --dir ./web  # Serve ./web on :4000
//	dashserve validate -c config.yaml  # Validate configuration
//	dashserve version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd serves the dashboard; subcommands cover validation and version info.
var rootCmd = &cobra.Command{
	Use:   "dashserve",
	Short: "Serve dashboard assets locally with CORS headers",
	Long: `dashserve is a development server for dashboard front-end assets.

It serves the files of a directory over HTTP and adds permissive CORS
headers to every response, so a front-end on another origin can load them.

Quick start:
  1. Run: dashserve --dir ./dashboard
  2. Open http://localhost:3001 in your browser
  3. Press Ctrl+C to stop

Every response carries:
  Access-Control-Allow-Origin: *
  Access-Control-Allow-Methods: GET, OPTIONS
  Access-Control-Allow-Headers: Content-Type, X-API-Key
  Cache-Control: no-cache`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this dashserve binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dashserve %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
