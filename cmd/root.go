// Package cmd implements the contactdash command line.
package cmd

import (
	"contactdash/config"
	"contactdash/utils"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// options is shared by every subcommand of one root command
type options struct {
	cfgFile  string
	logLevel string
	apiURL   string
	local    bool
	cfg      *config.Config
}

// NewRootCmd builds a fresh command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "contactdash",
		Short: "Contact message store and dashboard",
		Long: `contactdash stores contact-form submissions and serves a dashboard to
read, star, archive and delete them.

Run "contactdash serve" to start the API and dashboard, or use the
"messages" commands to work with the messages from a terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := cfg.Log.Level
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			lvl, err := utils.ParseLevel(level)
			if err != nil {
				return err
			}
			utils.Log.SetLevel(lvl)

			if err := utils.InitI18n(); err != nil {
				utils.Log.Error("Failed to initialize i18n: %v", err)
			}

			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "config.toml", "path to the TOML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMessagesCmd(opts))
	return root
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
