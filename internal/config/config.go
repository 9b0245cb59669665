package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Logging  LoggingConfig
	Telegram TelegramConfig
	Shop     ShopConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// TelegramConfig holds the bot credential and Bot API settings.
type TelegramConfig struct {
	BotToken      string
	APIURL        string
	AdminChatID   int64
	NotifyTimeout time.Duration
	PollTimeout   time.Duration
	// InitDataMaxAge rejects stale launch payloads; zero disables the check.
	InitDataMaxAge time.Duration
}

// ShopConfig describes the storefront itself.
type ShopConfig struct {
	WebAppURL   string
	WebDir      string
	CatalogFile string
	Currency    string
}

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8080
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 15 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultAPIURL          = "https://api.telegram.org"
	defaultNotifyTimeout   = 10 * time.Second
	defaultPollTimeout     = 30 * time.Second
	defaultWebDir          = "web"
	defaultCurrency        = "₽"
)

var (
	ErrMissingBotToken  = errors.New("BOT_TOKEN is required")
	ErrMissingWebAppURL = errors.New("WEBAPP_URL is required")
)

// Load reads configuration from environment variables, applying defaults.
// Presence of BOT_TOKEN and WEBAPP_URL is checked by the commands that need them.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host: valueOrDefault("SERVER_HOST", defaultHost),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("BOT_TOKEN"),
			APIURL:   valueOrDefault("TELEGRAM_API_URL", defaultAPIURL),
		},
		Shop: ShopConfig{
			WebAppURL:   os.Getenv("WEBAPP_URL"),
			WebDir:      valueOrDefault("WEB_DIR", defaultWebDir),
			CatalogFile: os.Getenv("CATALOG_FILE"),
			Currency:    valueOrDefault("CURRENCY_SYMBOL", defaultCurrency),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	adminChatID, err := parseInt64("ADMIN_CHAT_ID", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.Telegram.AdminChatID = adminChatID

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"NOTIFY_TIMEOUT", defaultNotifyTimeout, &cfg.Telegram.NotifyTimeout},
		{"BOT_POLL_TIMEOUT", defaultPollTimeout, &cfg.Telegram.PollTimeout},
		{"INITDATA_MAX_AGE", 0, &cfg.Telegram.InitDataMaxAge},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	return cfg, nil
}

// RequireBotToken fails when no bot credential is configured.
func (c Config) RequireBotToken() error {
	if c.Telegram.BotToken == "" {
		return ErrMissingBotToken
	}
	return nil
}

// RequireWebAppURL fails when the storefront URL the bot links to is unset.
func (c Config) RequireWebAppURL() error {
	if c.Shop.WebAppURL == "" {
		return ErrMissingWebAppURL
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseInt64(key string, fallback int64) (int64, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		return val, nil
	}
	return fallback, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
