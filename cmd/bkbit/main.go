// Package main provides the bkbit binary entry point.
// Bkbit translates heterogeneous biological-specimen and genome-annotation
// sources into the BICAN knowledge-graph serialization.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brain-bican/bkbit/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "bkbit"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "bkbit",
		Short: "BICAN knowledge base interaction toolkit",
		Long: `Bkbit translates lab and portal exports into the BICAN
knowledge-graph serialization.

It provides:
- GFF3 genome-annotation translation (NCBI and Ensembl releases)
- Specimen file-manifest translation
- JSON-LD and Turtle serialization of the resulting object graph
- Optional publishing to a knowledge-graph ingest stream`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append diagnostics to this file in addition to stderr")

	app := &appContext{
		configPath: &configPath,
		logLevel:   &logLevel,
		logFile:    &logFile,
	}

	cmd.AddCommand(gffCmd(app))
	cmd.AddCommand(manifestCmd(app))
	cmd.AddCommand(watchCmd(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// appContext defers config and logger construction until a subcommand runs,
// after all flags are parsed.
type appContext struct {
	configPath *string
	logLevel   *string
	logFile    *string
}

// setup loads the layered configuration and builds the logger. Flag values
// override the configuration file.
func (a *appContext) setup() (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	var err error
	if *a.configPath != "" {
		cfg, err = config.LoadFromFile(*a.configPath)
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	} else {
		cfg, err = config.NewLoader(nil).Load()
		if err != nil {
			return nil, nil, err
		}
	}

	if *a.logLevel != "" {
		cfg.Log.Level = *a.logLevel
	}
	if *a.logFile != "" {
		cfg.Log.File = *a.logFile
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// buildLogger constructs the diagnostics logger. When a log file is
// configured, entries go both to stderr and to the companion file for
// post-hoc auditing.
func buildLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
