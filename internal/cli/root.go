package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reshetovitsme/channel-relay/internal/shared/config"
	"github.com/reshetovitsme/channel-relay/internal/shared/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
	Verbose   bool
}

// NewRootCommand creates the root command for the relay CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Telegram channel relay with owner approval",
		Long: `Watches Telegram channels through a user session and asks channel owners,
via the bot, before re-publishing new posts into their own channels.`,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", ".", "directory holding config.yaml|yml|json|toml")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))

	return cmd
}

// loadConfig reads the config and installs the process logger
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.ConfigDir)
	if err != nil {
		return nil, err
	}

	level := logging.Level(cfg.LogLevel, cfg.AppEnv)
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.New(level))
	return cfg, nil
}
