package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Cheertaboi/tgshop/internal/auth"
	"github.com/Cheertaboi/tgshop/internal/models"
	"github.com/Cheertaboi/tgshop/internal/service"
)

const maxOrderBody = 1 << 20

// --- Response DTOs ---

type OrderResponse struct {
	OK    bool  `json:"ok"`
	Total int64 `json:"total"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// --- Handler struct & constructor ---

type ProductLister interface {
	Products() []models.Product
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, initData string, items []models.OrderLineRequest) (models.OrderSummary, error)
}

type ShopHandler struct {
	products ProductLister
	orders   OrderSubmitter
	logger   *slog.Logger
}

func NewShopHandler(products ProductLister, orders OrderSubmitter, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// --- Handlers ---

// ListProducts handles GET /api/products
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.products.Products())
}

// CreateOrder handles POST /api/order
func (h *ShopHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_body"})
		return
	}

	order, err := h.orders.SubmitOrder(r.Context(), req.InitData, req.Items)
	if err != nil {
		var authErr *auth.Error
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &authErr):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Detail: authErr.Reason})
		case errors.As(err, &validationErr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Detail: validationErr.Reason})
		default:
			h.logger.Error("submit order failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{OK: true, Total: order.Total})
}
