package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jpalmerr/dashserve"
	"github.com/jpalmerr/dashserve/config"
	"github.com/mattn/go-isatty"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func init() {
	addServeFlags(rootCmd.Flags())
}

// addServeFlags registers the serving flags on fs.
func addServeFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", dashserve.DefaultPort, "port to serve on")
	fs.StringP("dir", "d", "", "directory to serve (default: the directory containing this binary)")
	fs.StringP("config", "c", "", "path to an optional config file")
	fs.Bool("open", false, "open the dashboard in the default browser")
	fs.BoolP("verbose", "v", false, "enable debug logging")
}

// loadConfig builds the effective configuration: defaults, then the config
// file if one was given, then any flags set explicitly on the command line.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()

	if path, _ := fs.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("dir") {
		cfg.Dir, _ = fs.GetString("dir")
	}
	if fs.Changed("open") {
		cfg.Open, _ = fs.GetBool("open")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	// flags parsed fine; errors from here on are runtime errors, not usage errors
	cmd.SilenceUsage = true

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := append(cfg.Options(),
		dashserve.WithLogger(logger),
		dashserve.WithAccessLog(cmd.ErrOrStderr()),
		dashserve.WithReadyCallback(func(r dashserve.Ready) {
			printBanner(out, cfg.Title, r)
		}),
	)
	if cfg.Open {
		opts = append(opts, dashserve.WithReadyCallback(func(r dashserve.Ready) {
			if err := browser.OpenURL(r.URL); err != nil {
				logger.Warn("failed to open browser", "url", r.URL, "error", err)
			}
		}))
	}

	ds, err := dashserve.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create dev server: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ds.Start(ctx); err != nil {
		return err
	}

	fmt.Fprint(out, stopNotice)
	return nil
}

// stopNotice is printed after a clean shutdown regardless of the configured title.
const stopNotice = "\n  Dashboard server stopped.\n"

// printBanner writes the startup notice shown once the port is bound.
func printBanner(out io.Writer, title string, r dashserve.Ready) {
	ok := color.New(color.Bold, color.FgGreen)
	if isTerminal(out) {
		ok.EnableColor()
	} else {
		ok.DisableColor()
	}
	fmt.Fprintf(out, "\n  %s\n\n", ok.Sprintf("✓ %s running at %s", title, r.URL))
	fmt.Fprintf(out, "  Serving files from: %s\n", r.Root)
	fmt.Fprintf(out, "  Press Ctrl+C to stop.\n\n")
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
