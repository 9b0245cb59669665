// Package bot answers /start with a button that opens the storefront.
package bot

import (
	"context"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	startCommand = "/start"
	greeting     = "Open the shop with the button below 👇"
	buttonText   = "🛍 Open shop"
)

// API is the part of the Bot API the front-end replies through.
type API interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Poller delivers updates to registered handlers until ctx is done;
// *tgbot.Bot implements it with long polling.
type Poller interface {
	Start(ctx context.Context)
}

type Config struct {
	WebAppURL string
}

type Bot struct {
	api    API
	cfg    Config
	logger *slog.Logger
}

func New(api API, cfg Config, logger *slog.Logger) *Bot {
	return &Bot{api: api, cfg: cfg, logger: logger}
}

// Attach registers the /start handler on client and returns its handler id.
func (b *Bot) Attach(client *tgbot.Bot) string {
	return client.RegisterHandlerMatchFunc(MatchStart, b.Handle)
}

// Run polls until ctx is cancelled. Handlers must already be attached.
func (b *Bot) Run(ctx context.Context, p Poller) error {
	b.logger.Info("bot polling started", "webapp_url", b.cfg.WebAppURL)
	p.Start(ctx)
	b.logger.Info("bot polling stopped")
	return nil
}

// Handle is the tgbot.HandlerFunc form of HandleUpdate.
func (b *Bot) Handle(ctx context.Context, _ *tgbot.Bot, u *models.Update) {
	if err := b.HandleUpdate(ctx, u); err != nil {
		b.logger.Warn("handle update failed", "update_id", u.ID, "error", err)
	}
}

// HandleUpdate replies to /start with the storefront launch button and
// ignores everything else.
func (b *Bot) HandleUpdate(ctx context.Context, u *models.Update) error {
	if !MatchStart(u) {
		return nil
	}
	_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      u.Message.Chat.ID,
		Text:        greeting,
		ReplyMarkup: b.launchKeyboard(),
	})
	return err
}

func (b *Bot) launchKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: buttonText, WebApp: &models.WebAppInfo{URL: b.cfg.WebAppURL}},
		}},
	}
}

// MatchStart reports whether u is a text message carrying /start.
func MatchStart(u *models.Update) bool {
	return u != nil && u.Message != nil && IsStartCommand(u.Message.Text)
}

// IsStartCommand accepts "/start", "/start@botname" and either with a
// deep-link argument.
func IsStartCommand(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd == startCommand
}
