package di

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"

	channelRepo "github.com/reshetovitsme/channel-relay/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/channel-relay/internal/modules/channel/service"
	feedDomain "github.com/reshetovitsme/channel-relay/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/channel-relay/internal/modules/feed/service"
	"github.com/reshetovitsme/channel-relay/internal/modules/moderation/pending"
	moderationService "github.com/reshetovitsme/channel-relay/internal/modules/moderation/service"
	monitorService "github.com/reshetovitsme/channel-relay/internal/modules/monitor/service"
	publicationRepo "github.com/reshetovitsme/channel-relay/internal/modules/publication/repository"
	publicationService "github.com/reshetovitsme/channel-relay/internal/modules/publication/service"
	"github.com/reshetovitsme/channel-relay/internal/shared/config"
	"github.com/reshetovitsme/channel-relay/internal/shared/database"
	"github.com/reshetovitsme/channel-relay/internal/shared/logging"
	httpServer "github.com/reshetovitsme/channel-relay/internal/transport/http"
	"github.com/reshetovitsme/channel-relay/internal/transport/mtproto"
	telegramHandler "github.com/reshetovitsme/channel-relay/internal/transport/telegram"
)

const shutdownTimeout = 10 * time.Second

// Setup initializes the dependency injection container around a loaded config
func Setup(cfg *config.Config) (do.Injector, error) {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	// Register Database
	do.Provide(injector, func(i do.Injector) (*sql.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return nil, oops.With("database_path", cfg.DatabasePath, "context", "failed to open database").Wrap(err)
		}
		return db, nil
	})

	// Register Repositories
	do.Provide(injector, func(i do.Injector) (channelRepo.Repository, error) {
		return channelRepo.NewSQLiteStorage(do.MustInvoke[*sql.DB](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (publicationRepo.Repository, error) {
		return publicationRepo.NewSQLiteStorage(do.MustInvoke[*sql.DB](i)), nil
	})

	// Register Services
	do.Provide(injector, func(i do.Injector) (*channelService.Service, error) {
		return channelService.New(do.MustInvoke[channelRepo.Repository](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*publicationService.Service, error) {
		return publicationService.New(do.MustInvoke[publicationRepo.Repository](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return feedService.New(
			feedDomain.FeedConfig{BaseURL: "http://localhost:" + cfg.HTTPPort},
			do.MustInvoke[channelRepo.Repository](i),
			do.MustInvoke[publicationRepo.Repository](i),
		), nil
	})

	// Register MTProto client (serve mode never prompts)
	do.Provide(injector, func(i do.Injector) (*mtproto.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewMTProtoClient(cfg, false), nil
	})

	// Register Bot; commands are attached by the handler provider
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		b, err := bot.New(cfg.TelegramBotToken)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	// Register Moderation
	do.Provide(injector, func(i do.Injector) (*moderationService.Fanout, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return moderationService.NewFanout(
			do.MustInvoke[channelRepo.Repository](i),
			do.MustInvoke[*mtproto.Client](i),
			pending.New(),
			telegramHandler.NewGateway(do.MustInvoke[*bot.Bot](i)),
			do.MustInvoke[*publicationService.Service](i),
			cfg.PreviewLimit,
		), nil
	})

	// Register Monitor
	do.Provide(injector, func(i do.Injector) (*monitorService.Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[channelRepo.Repository](i)
		client := do.MustInvoke[*mtproto.Client](i)
		peers := monitorService.NewPeerCache()

		supervisor := monitorService.NewSupervisor(client, mtproto.NonInteractivePrompter{}, cfg.FloodMaxRetries, nil)
		subscriptions := monitorService.NewSubscriptionManager(repo, client, peers, cfg.SubscribeDelay, cfg.FloodMaxRetries, nil)
		ingestor := monitorService.NewIngestor(repo, client, subscriptions, peers, cfg.PageSize, cfg.FloodMaxRetries, nil)

		return monitorService.NewScheduler(repo, supervisor, subscriptions, ingestor,
			do.MustInvoke[*moderationService.Fanout](i),
			monitorService.SchedulerOptions{
				CheckInterval:  cfg.CheckInterval,
				ErrorCooldown:  cfg.ErrorCooldown,
				PostDelay:      cfg.PostDelay,
				ReconnectEvery: cfg.ReconnectEvery,
			}, nil), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		handler := telegramHandler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*channelService.Service](i),
			do.MustInvoke[*moderationService.Fanout](i),
			do.MustInvoke[*publicationService.Service](i),
			do.MustInvoke[*monitorService.Scheduler](i),
		)
		handler.RegisterCommands(do.MustInvoke[*bot.Bot](i))
		return handler, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		server := httpServer.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*monitorService.Scheduler](i),
			do.MustInvoke[*moderationService.Fanout](i),
			do.MustInvoke[*channelService.Service](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// NewMTProtoClient builds the user session client from config
func NewMTProtoClient(cfg *config.Config, interactive bool) *mtproto.Client {
	level := logging.Level(cfg.LogLevel, cfg.AppEnv)
	return mtproto.NewClient(mtproto.Options{
		AppID:       cfg.TelegramAppID,
		AppHash:     cfg.TelegramAppHash,
		Phone:       cfg.TelegramPhone,
		SessionPath: cfg.SessionPath,
		Logger:      logging.NewZap(level),
		Interactive: interactive,
	})
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop the monitor first so no post is handed off mid-shutdown
	if scheduler, err := do.Invoke[*monitorService.Scheduler](injector); err == nil && scheduler != nil {
		scheduler.Stop()
	}

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
	}

	if db, err := do.Invoke[*sql.DB](injector); err == nil && db != nil {
		return db.Close()
	}
	return nil
}
