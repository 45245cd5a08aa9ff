package main

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/dashserve/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a dashserve configuration file without starting the server.

This command parses the YAML and validates all fields, including that the
configured directory exists.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  dashserve validate -c dashserve.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "(directory of the dashserve binary)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:   %s\n", cfg.Title)
	fmt.Fprintf(out, "  Port:    %d\n", cfg.Port)
	fmt.Fprintf(out, "  Dir:     %s\n", dir)
	fmt.Fprintf(out, "  Open:    %t\n", cfg.Open)

	names := make([]string, 0, len(cfg.Headers))
	for k := range cfg.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "  Headers: %d\n", len(names))
	for _, k := range names {
		fmt.Fprintf(out, "    %s: %s\n", k, cfg.Headers[k])
	}

	return nil
}
