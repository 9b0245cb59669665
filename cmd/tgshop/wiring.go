package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/Cheertaboi/tgshop/internal/api"
	"github.com/Cheertaboi/tgshop/internal/auth"
	"github.com/Cheertaboi/tgshop/internal/bot"
	"github.com/Cheertaboi/tgshop/internal/catalog"
	"github.com/Cheertaboi/tgshop/internal/config"
	"github.com/Cheertaboi/tgshop/internal/logging"
	"github.com/Cheertaboi/tgshop/internal/notify"
	"github.com/Cheertaboi/tgshop/internal/repository"
	"github.com/Cheertaboi/tgshop/internal/service"
	"github.com/Cheertaboi/tgshop/internal/telegram"
	"github.com/Cheertaboi/tgshop/pkg/db"
)

type environment struct {
	cfg    config.Config
	dbCfg  db.PostgresConfig
	logger *slog.Logger
}

// loadEnv reads an optional .env file from the working directory before the
// environment itself.
func loadEnv() (environment, error) {
	if err := config.LoadDotEnv(); err != nil {
		return environment{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return environment{}, fmt.Errorf("load config: %w", err)
	}
	dbCfg, err := db.LoadPostgresConfig()
	if err != nil {
		return environment{}, fmt.Errorf("load db config: %w", err)
	}
	return environment{cfg: cfg, dbCfg: dbCfg, logger: logging.New(cfg.Logging)}, nil
}

// loadCatalog picks the product source: Postgres when DB_HOST is set, then
// CATALOG_FILE, then the built-in assortment.
func loadCatalog(ctx context.Context, env environment) (*catalog.Catalog, error) {
	switch {
	case env.dbCfg.Enabled():
		conn, err := db.NewPostgresConnection(ctx, env.dbCfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		// The catalog is read once; the pool is not needed afterwards.
		defer conn.Close()
		env.logger.Info("loading catalog from postgres", "host", env.dbCfg.Host, "database", env.dbCfg.DBName)
		return catalog.Load(ctx, repository.NewProductRepo(conn))
	case env.cfg.Shop.CatalogFile != "":
		env.logger.Info("loading catalog from file", "path", env.cfg.Shop.CatalogFile)
		return catalog.Load(ctx, catalog.TOMLFile(env.cfg.Shop.CatalogFile))
	default:
		return catalog.Load(ctx, catalog.Builtin())
	}
}

func newTelegramClient(cfg config.TelegramConfig, logger *slog.Logger) (*tgbot.Bot, error) {
	return telegram.NewClient(cfg.BotToken, telegram.Options{
		BaseURL:     cfg.APIURL,
		PollTimeout: cfg.PollTimeout,
		Timeout:     cfg.NotifyTimeout,
		Logger:      logger,
	})
}

func buildServer(ctx context.Context, env environment, addr string) (*http.Server, error) {
	cfg := env.cfg

	cat, err := loadCatalog(ctx, env)
	if err != nil {
		return nil, err
	}
	env.logger.Info("catalog loaded", "products", cat.Len())

	verifier := auth.NewVerifier(cfg.Telegram.BotToken)
	verifier.MaxAge = cfg.Telegram.InitDataMaxAge

	client, err := newTelegramClient(cfg.Telegram, env.logger)
	if err != nil {
		return nil, err
	}
	messenger := telegram.NewMessenger(client, cfg.Telegram.BotToken)
	dispatcher := notify.NewDispatcher(messenger, cfg.Telegram.AdminChatID, env.logger)
	if cfg.Telegram.AdminChatID == 0 {
		env.logger.Warn("ADMIN_CHAT_ID not set, admin order reports are disabled")
	}

	orders := service.NewOrderService(verifier, cat, dispatcher, env.logger, service.OrderServiceConfig{
		Currency:      cfg.Shop.Currency,
		NotifyTimeout: cfg.Telegram.NotifyTimeout,
	})

	router := api.NewRouter(env.logger, api.RouterDependencies{
		Products: cat,
		Orders:   orders,
		WebDir:   cfg.Shop.WebDir,
	})

	if addr == "" {
		addr = cfg.HTTP.Addr()
	}
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}, nil
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, env environment, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		env.logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	env.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	env.logger.Info("server stopped")
	return nil
}

// launcher pairs the /start front-end with the client that polls for it.
type launcher struct {
	bot    *bot.Bot
	client *tgbot.Bot
}

func (l launcher) Run(ctx context.Context) error {
	return l.bot.Run(ctx, l.client)
}

func buildBot(env environment) (launcher, error) {
	cfg := env.cfg
	if err := cfg.RequireBotToken(); err != nil {
		return launcher{}, err
	}
	if err := cfg.RequireWebAppURL(); err != nil {
		return launcher{}, err
	}

	logger := env.logger.With("component", "bot")
	client, err := newTelegramClient(cfg.Telegram, logger)
	if err != nil {
		return launcher{}, err
	}
	b := bot.New(client, bot.Config{WebAppURL: cfg.Shop.WebAppURL}, logger)
	b.Attach(client)
	return launcher{bot: b, client: client}, nil
}
