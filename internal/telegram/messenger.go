package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageAPI is the sendMessage call of *tgbot.Bot.
type MessageAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Messenger sends plain text messages; it satisfies notify.Sender.
type Messenger struct {
	api   MessageAPI
	token string
}

// NewMessenger wraps api. token is only used to scrub error messages.
func NewMessenger(api MessageAPI, token string) *Messenger {
	return &Messenger{api: api, token: token}
}

func (m *Messenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := m.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", Redact(err, m.token))
	}
	return nil
}
