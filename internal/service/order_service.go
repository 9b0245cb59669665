package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/tgshop/internal/auth"
	"github.com/Cheertaboi/tgshop/internal/models"
)

// Collaborators are interfaces to allow stubbing in tests.
type Authenticator interface {
	Authenticate(initData string) (models.Identity, error)
}

type PriceList interface {
	Price(productID string) (int64, bool)
}

type Notifier interface {
	Dispatch(ctx context.Context, order models.OrderSummary) error
}

// ValidationError rejects an order because of its contents.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
	ErrNoItems     = &ValidationError{Reason: "order has no items"}
	ErrBadQuantity = &ValidationError{Reason: "qty must be > 0"}
	// ErrQtyTooLarge is returned when a line cost or the running total would
	// not fit in int64.
	ErrQtyTooLarge = &ValidationError{Reason: "qty too large"}
)

func unknownProduct(id string) error {
	return &ValidationError{Reason: "Unknown product: " + id}
}

const (
	DefaultCurrency      = "₽"
	DefaultNotifyTimeout = 10 * time.Second
)

type OrderServiceConfig struct {
	// Currency is appended to every amount in notification texts.
	Currency      string
	NotifyTimeout time.Duration
}

type OrderService struct {
	auth     Authenticator
	prices   PriceList
	notifier Notifier
	logger   *slog.Logger
	cfg      OrderServiceConfig
	newRef   func() string
}

func NewOrderService(a Authenticator, prices PriceList, n Notifier, logger *slog.Logger, cfg OrderServiceConfig) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	return &OrderService{
		auth:     a,
		prices:   prices,
		notifier: n,
		logger:   logger,
		cfg:      cfg,
		newRef:   uuid.NewString,
	}
}

// SubmitOrder authenticates the caller, prices every item and relays the
// order. It returns *auth.Error or *ValidationError for rejected orders;
// nothing is sent unless the whole order validates. Notification failures
// are logged and do not affect the result.
func (s *OrderService) SubmitOrder(ctx context.Context, initData string, items []models.OrderLineRequest) (models.OrderSummary, error) {
	identity, err := s.auth.Authenticate(initData)
	if err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			s.logger.Warn("rejected order: authentication failed", "reason", authErr.Reason)
		}
		return models.OrderSummary{}, err
	}

	lines, total, err := s.price(items)
	if err != nil {
		s.logger.Info("rejected order: invalid items", "user_id", identity.User.ID, "reason", err.Error())
		return models.OrderSummary{}, err
	}

	order := models.OrderSummary{
		Reference: s.newRef(),
		Identity:  identity,
		Lines:     lines,
		Total:     total,
	}
	order.UserText = s.userText(order)
	order.AdminText = s.adminText(order)

	s.logger.Info("order accepted",
		"order", order.Reference,
		"user_id", identity.User.ID,
		"items", len(lines),
		"total", total,
	)

	s.dispatch(ctx, order)
	return order, nil
}

// price validates items in input order and stops at the first violation.
func (s *OrderService) price(items []models.OrderLineRequest) ([]models.OrderLine, int64, error) {
	if len(items) == 0 {
		return nil, 0, ErrNoItems
	}

	lines := make([]models.OrderLine, 0, len(items))
	var total int64
	for _, it := range items {
		unit, ok := s.prices.Price(it.ProductID)
		if !ok {
			return nil, 0, unknownProduct(it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, 0, ErrBadQuantity
		}
		if unit > 0 && int64(it.Quantity) > (math.MaxInt64-total)/unit {
			return nil, 0, ErrQtyTooLarge
		}
		cost := unit * int64(it.Quantity)
		total += cost
		lines = append(lines, models.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			Cost:      cost,
		})
	}
	return lines, total, nil
}

// dispatch runs detached from the request so a client hang-up does not cut
// notifications short; the notify timeout still bounds it.
func (s *OrderService) dispatch(ctx context.Context, order models.OrderSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.notifier.Dispatch(ctx, order); err != nil {
		s.logger.Warn("order notifications incomplete", "order", order.Reference, "error", err)
	}
}

func (s *OrderService) userText(order models.OrderSummary) string {
	return fmt.Sprintf("✅ Order accepted!\nTotal: %d%s", order.Total, s.cfg.Currency)
}

func (s *OrderService) adminText(order models.OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 New order %s\n", shortRef(order.Reference))
	fmt.Fprintf(&b, "From: %s (id=%d)\n", order.Identity.User.FirstName, order.Identity.User.ID)
	for _, l := range order.Lines {
		b.WriteString(FormatLine(l, s.cfg.Currency))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Total: %d%s", order.Total, s.cfg.Currency)
	return b.String()
}

// FormatLine renders a priced item as "- {id} × {qty} = {cost}{currency}".
func FormatLine(l models.OrderLine, currency string) string {
	return fmt.Sprintf("- %s × %d = %d%s", l.ProductID, l.Quantity, l.Cost, currency)
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}
