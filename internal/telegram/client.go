// Package telegram builds the Bot API client shared by the order notifier and
// the launcher bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
)

const (
	DefaultBaseURL     = "https://api.telegram.org"
	DefaultPollTimeout = 30 * time.Second
	// DefaultTimeout bounds every call on top of the long-poll wait.
	DefaultTimeout = 10 * time.Second
)

// Options configures NewClient. Zero values fall back to the defaults above.
type Options struct {
	BaseURL     string
	PollTimeout time.Duration
	Timeout     time.Duration
	// Logger receives polling errors; nil discards them.
	Logger *slog.Logger
}

// NewClient returns a go-telegram/bot client for token. The getMe probe is
// skipped so construction never touches the network.
func NewClient(token string, opts Options, extra ...tgbot.Option) (*tgbot.Bot, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	options := []tgbot.Option{
		tgbot.WithSkipGetMe(),
		tgbot.WithServerURL(strings.TrimRight(opts.BaseURL, "/")),
		// The long poll holds the request open for PollTimeout, so the
		// HTTP timeout has to outlast it.
		tgbot.WithHTTPClient(opts.PollTimeout, &http.Client{Timeout: opts.PollTimeout + opts.Timeout}),
		tgbot.WithErrorsHandler(pollErrorLogger(opts.Logger, token)),
	}
	options = append(options, extra...)

	client, err := tgbot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("telegram client: %w", Redact(err, token))
	}
	return client, nil
}

func pollErrorLogger(logger *slog.Logger, token string) func(error) {
	return func(err error) {
		if logger == nil || errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("telegram polling error", "error", Redact(err, token))
	}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// Redact hides token in err's message. Transport errors embed the request
// URL, which carries the token.
func Redact(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}
