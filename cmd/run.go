package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BatmanBruc/yt-audio-bot/internal/config"
	"github.com/BatmanBruc/yt-audio-bot/internal/content"
	"github.com/BatmanBruc/yt-audio-bot/internal/handlers"
	"github.com/BatmanBruc/yt-audio-bot/internal/logging"
	"github.com/BatmanBruc/yt-audio-bot/internal/membership"
	"github.com/BatmanBruc/yt-audio-bot/internal/messages"
	"github.com/BatmanBruc/yt-audio-bot/internal/messenger"
	"github.com/BatmanBruc/yt-audio-bot/internal/middleware"
	"github.com/BatmanBruc/yt-audio-bot/internal/observability"
	"github.com/BatmanBruc/yt-audio-bot/internal/scheduler"
	"github.com/BatmanBruc/yt-audio-bot/internal/server"
	"github.com/BatmanBruc/yt-audio-bot/store"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

var modeFlag string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot and its HTTP endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if modeFlag != "" {
			if err := os.Setenv("BOT_MODE", modeFlag); err != nil {
				return err
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return runBot(cmd.Context(), cfg)
	},
}

func bindRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modeFlag, "mode", "", "update delivery: polling or webhook (overrides BOT_MODE)")
}

func runBot(ctx context.Context, cfg config.Config) error {
	logger, logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogPretty, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	cooldowns, closeCooldowns, err := newCooldownStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("cooldown store: %w", err)
	}
	defer closeCooldowns()

	var users types.UserStore
	if cfg.PostgresDSN != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pgStore.Close()
		users = pgStore
	}

	webhook := cfg.Mode == config.ModeWebhook
	opts := []bot.Option{
		bot.WithHTTPClient(cfg.PollTimeout, &http.Client{Timeout: 10 * time.Minute}),
	}
	if webhook && cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	tg := messenger.NewTelegram(b, messenger.Options{
		MaxMessageLength: cfg.MaxMessageLength,
		SendRate:         cfg.SendRate,
		SendBurst:        cfg.SendBurst,
		MediaClient:      &http.Client{Timeout: cfg.MediaTimeout},
	}, logger)

	contentClient, err := content.NewHTTPClient(cfg.ContentTimeout, cfg.ContentProxyURL)
	if err != nil {
		return fmt.Errorf("content client: %w", err)
	}
	gateway := content.NewGateway(contentClient, cfg.MetadataAPIURL, cfg.SearchAPIURL, logger)
	gate := membership.NewGate(tg, cfg.RequiredChannels, logger)

	h := handlers.NewHandlers(tg, gateway, gate, cooldowns, users, handlers.Options{
		AdminID:          types.UserID(cfg.AdminUserID),
		Channels:         cfg.RequiredChannels,
		MaxSearchResults: cfg.MaxSearchResults,
		Links: messages.Links{
			JoinChannelURL: cfg.JoinChannelURL,
			MiniAppURL:     cfg.MiniAppURL,
			Credit:         cfg.CreditLine,
		},
	}, logger)

	events := scheduler.NewScheduler(h.Dispatch, scheduler.Config{Workers: cfg.MaxConcurrentEvents}, logger)
	events.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := events.Stop(sctx); err != nil {
			logger.Warn().Err(err).Msg("in-flight events abandoned")
		}
	}()

	handlerChain := middleware.NewMiddlewares(logger).Chain(events.Enqueue)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	srvOpts := server.Options{Addr: cfg.HTTPAddr}
	if webhook {
		srvOpts.Webhook = b.WebhookHandler()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(srvOpts, logger).Run(gctx, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		if webhook {
			if _, err := b.SetWebhook(gctx, &bot.SetWebhookParams{
				URL:         cfg.WebhookURL,
				SecretToken: cfg.WebhookSecret,
			}); err != nil {
				return fmt.Errorf("set webhook: %w", err)
			}
			logger.Info().Str("url", cfg.WebhookURL).Msg("Bot started in webhook mode. Press Ctrl+C to stop.")
			b.StartWebhook(gctx)
			return nil
		}
		if _, err := b.DeleteWebhook(gctx, &bot.DeleteWebhookParams{}); err != nil {
			logger.Warn().Err(err).Msg("delete webhook failed")
		}
		logger.Info().Msg("Bot started. Press Ctrl+C to stop.")
		b.Start(gctx)
		return nil
	})

	err = g.Wait()
	logger.Info().Msg("shutting down")
	return err
}

// newCooldownStore opens the configured backend and returns its closer.
func newCooldownStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (types.CooldownStore, func(), error) {
	switch cfg.CooldownBackend {
	case config.CooldownRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store.NewRedisCooldownStore(rdb, cfg.Cooldown, logger), func() { _ = rdb.Close() }, nil
	case config.CooldownMemory:
		s, err := store.NewMemoryCooldownStore(cfg.Cooldown, cfg.CooldownCacheSize)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		s, err := store.NewFileCooldownStore(cfg.CooldownFile, cfg.Cooldown, cfg.CooldownRetention, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
