// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/webquery-tui/internal/config"
	"github.com/jeranaias/webquery-tui/internal/logging"
	"github.com/jeranaias/webquery-tui/internal/transport"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags and the configuration they produce.
type rootOptions struct {
	configPath string
	endpoint   string
	theme      string
	logFile    string
	logLevel   string
	envPath    string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "webquery",
		Short: "Chat with a web search assistant from the terminal",
		Long: `webquery sends questions to a web search answer service and shows the
answers as they stream in.

Run without a command to open the full-screen chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Run before any subcommand
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a config file (default ~/.webquery/config.toml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "URL of the generate endpoint")
	flags.StringVar(&opts.theme, "theme", "", "Color theme (forest, dark, light)")
	flags.StringVar(&opts.logFile, "log-file", "", "Path of the log file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.envPath, "env", ".env", "Path to .env file")

	root.AddCommand(
		newTUICmd(opts),
		newAskCmd(opts),
		newChatCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and prints any error to stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// setup loads the environment, the configuration and the log file.
// Commands read the result from o.cfg.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(o.envPath); err != nil && cmd.Flags().Changed("env") {
		return fmt.Errorf("failed to load env file %s: %w", o.envPath, err)
	}

	var (
		cfg     *config.Config
		loadErr error
	)
	if o.configPath != "" {
		if _, err := os.Stat(o.configPath); errors.Is(err, os.ErrNotExist) {
			// Not created yet; "config init" writes it.
			cfg = config.Default()
			cfg.ApplyEnvOverrides()
		} else {
			c, err := config.LoadFromPath(o.configPath)
			if err != nil {
				return err
			}
			cfg = c
		}
	} else {
		cfg, loadErr = config.Load()
	}

	if o.endpoint != "" {
		cfg.Endpoint.URL = o.endpoint
	}
	if o.theme != "" {
		cfg.UI.Theme = o.theme
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	o.cfg = cfg

	if err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (logging disabled)\n", err)
	}
	if loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", loadErr)
		logging.L().Warnw("config load failed", "error", loadErr)
	}
	logging.L().Debugw("starting", "command", cmd.Name(), "endpoint", cfg.Endpoint.URL, "version", Version)
	return nil
}

// watchPath returns the config file to watch for changes.
func (o *rootOptions) watchPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return path
}

// newClient creates a transport client for cfg.
func newClient(cfg *config.Config) *transport.Client {
	return transport.NewClientWithConfig(&transport.ClientConfig{
		Endpoint:          cfg.Endpoint.URL,
		TrackConversation: cfg.Endpoint.TrackConversation,
		RequestsPerMinute: cfg.RequestRate(),
	})
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of webquery",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webquery version %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
