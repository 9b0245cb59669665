// Package notify relays accepted orders to the customer and the shop admin.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Cheertaboi/tgshop/internal/concurrency"
	"github.com/Cheertaboi/tgshop/internal/models"
)

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Dispatcher sends the user confirmation and the admin report of an order.
type Dispatcher struct {
	sender      Sender
	adminChatID int64
	logger      *slog.Logger
}

// NewDispatcher returns a Dispatcher. adminChatID 0 disables admin reports.
func NewDispatcher(sender Sender, adminChatID int64, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Dispatch sends both messages concurrently and waits for them. Failures are
// logged and returned joined; there is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, order models.OrderSummary) error {
	var tasks []concurrency.Task

	if userID := order.Identity.User.ID; userID != 0 {
		tasks = append(tasks, d.send(userID, "user", order.Reference, order.UserText))
	}
	if d.adminChatID != 0 {
		tasks = append(tasks, d.send(d.adminChatID, "admin", order.Reference, order.AdminText))
	}

	return concurrency.FanOut(ctx, tasks...)
}

func (d *Dispatcher) send(chatID int64, recipient, ref, text string) concurrency.Task {
	return func(ctx context.Context) error {
		if err := d.sender.SendMessage(ctx, chatID, text); err != nil {
			d.logger.Warn("order notification failed",
				"order", ref,
				"recipient", recipient,
				"chat_id", chatID,
				"error", err,
			)
			return fmt.Errorf("notify %s: %w", recipient, err)
		}
		d.logger.Debug("order notification sent", "order", ref, "recipient", recipient)
		return nil
	}
}
