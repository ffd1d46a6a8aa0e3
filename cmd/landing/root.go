package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/vera-landing/internal/config"
	"github.com/JakeFAU/vera-landing/internal/server"
)

// configKeyType keys the loaded Config in the command context.
type configKeyType string

const configKey configKeyType = "config"

var errNoConfig = errors.New("configuration not loaded")

// newApp builds the application from a loaded Config.
var newApp = server.Build

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "landing",
		Short: "Landing page and lead intake for ЛОК VERA.",
		Long: `landing serves the ЛОК VERA apartment landing page and forwards
captured leads to the sales team through the lead endpoint, the form relay
or a Telegram bot.`,
		SilenceUsage: true,

		// Runs before every subcommand so they share one loaded Config.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	cmd.AddCommand(newServeCmd(), newSendCmd())
	return cmd
}

func configFrom(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(configKey).(config.Config)
	if !ok {
		return config.Config{}, errNoConfig
	}
	return cfg, nil
}
