package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/reshetovitsme/channel-relay/internal/di"
	monitorService "github.com/reshetovitsme/channel-relay/internal/modules/monitor/service"
	"github.com/reshetovitsme/channel-relay/internal/shared/config"
	httpServer "github.com/reshetovitsme/channel-relay/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/channel-relay/internal/transport/telegram"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the channel monitor and the HTTP server",
		Long: `Run the bot, the channel monitor and the HTTP server until interrupted.

The monitor needs an authorized session; create it once with "relay login".
Without app credentials the bot and the HTTP server still run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rootOpts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	injector, err := di.Setup(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	b, err := do.Invoke[*bot.Bot](injector)
	if err != nil {
		return err
	}
	if _, err := do.Invoke[*telegramHandler.Handler](injector); err != nil {
		return err
	}
	server, err := do.Invoke[*httpServer.Server](injector)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			cancel()
		}
	}()

	startMonitor(ctx, cfg, do.MustInvoke[*monitorService.Scheduler](injector))

	slog.Info("Application started", "port", cfg.HTTPPort)
	slog.Info("Press Ctrl+C to stop")

	// Start blocks until ctx is done
	b.Start(ctx)
	slog.Info("Shutting down...")
	return nil
}

func startMonitor(ctx context.Context, cfg *config.Config, scheduler *monitorService.Scheduler) {
	if err := cfg.ValidateMonitor(); err != nil {
		slog.Warn("Channel monitor disabled", "reason", err)
		return
	}
	if _, err := os.Stat(cfg.SessionPath); err != nil {
		slog.Warn("No session file found, run the login command first", "session_path", cfg.SessionPath)
	}
	scheduler.Start(ctx)
}
