package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/config"
	"github.com/recera/imagefocus/pkg/scheduler"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// globalFlags are shared by every command
type globalFlags struct {
	verbose bool
	config  string
}

func main() {
	flags := &globalFlags{}

	var rootCmd = &cobra.Command{
		Use:   "imagefocus",
		Short: "imagefocus - click-to-zoom image overlay for long-form pages",
		Long: `imagefocus inspects pages for focusable images, drives the overlay
headlessly from the terminal, and serves pages with the WASM client and
live reload.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log overlay transitions")
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Path to imagefocus.yaml (defaults to ./imagefocus.yaml)")

	// Add commands
	rootCmd.AddCommand(newScanCommand(flags))
	rootCmd.AddCommand(newViewCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newBuildCommand(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger returns the slog logger for the command. Overlay transitions log
// at Debug, so they only show with --verbose.
func (f *globalFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if f.verbose {
		scheduler.SetDebugLog(func(args ...interface{}) {
			logger.Debug(strings.TrimSpace(fmt.Sprintln(args...)))
		})
	}
	return logger
}

// loadConfig reads --config, or imagefocus.yaml in the working directory
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if f.config != "" {
		cfg, err := config.LoadFile(f.config)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f.config, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.FileName, err)
	}
	return cfg, nil
}
