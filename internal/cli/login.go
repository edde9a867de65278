package cli

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reshetovitsme/channel-relay/internal/di"
	"github.com/reshetovitsme/channel-relay/internal/transport/mtproto"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize the monitoring session interactively",
		Long: `Authorize the user session the channel monitor reads channels with.

Prompts for the code Telegram sends to the configured phone and for the 2FA
password when one is set, then stores the session at session_path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateMonitor(); err != nil {
				return err
			}

			client := di.NewMTProtoClient(cfg, true)
			prompter := &mtproto.TerminalPrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			if err := client.Connect(cmd.Context(), prompter); err != nil {
				return oops.In("login").With("session_path", cfg.SessionPath).Wrapf(err, "login failed")
			}
			defer client.Disconnect()

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Session saved to %s\n", cfg.SessionPath)
			return nil
		},
	}
}
