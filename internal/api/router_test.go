package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/tgshop/internal/auth"
	"github.com/Cheertaboi/tgshop/internal/catalog"
	"github.com/Cheertaboi/tgshop/internal/notify"
	"github.com/Cheertaboi/tgshop/internal/service"
)

const botToken = "TEST_TOKEN"

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64]string
}

func (s *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[int64]string)
	}
	s.sent[chatID] = text
	return nil
}

func newTestRouter(t *testing.T, webDir string) (http.Handler, *recordingSender) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat, err := catalog.Load(context.Background(), catalog.Builtin())
	require.NoError(t, err)

	sender := &recordingSender{}
	dispatcher := notify.NewDispatcher(sender, 555, logger)
	orders := service.NewOrderService(auth.NewVerifier(botToken), cat, dispatcher, logger, service.OrderServiceConfig{})

	return NewRouter(logger, RouterDependencies{Products: cat, Orders: orders, WebDir: webDir}), sender
}

func signedInitData() string {
	return auth.Sign(map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAA",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}, botToken)
}

func orderBody(t *testing.T, initData string, items string) io.Reader {
	t.Helper()
	raw, err := json.Marshal(initData)
	require.NoError(t, err)
	return strings.NewReader(`{"initData":` + string(raw) + `,"items":` + items + `}`)
}

func TestProductsRoute(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"id":"p1","name":"T-shirt","price":1990},
		{"id":"p2","name":"Cap","price":1490},
		{"id":"p3","name":"Hoodie","price":4990}
	]`, rec.Body.String())
}

func TestOrderRouteEndToEnd(t *testing.T) {
	router, sender := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/order",
		orderBody(t, signedInitData(), `[{"id":"p1","qty":2},{"id":"p2","qty":1}]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"total":5470}`, rec.Body.String())

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, "✅ Order accepted!\nTotal: 5470₽", sender.sent[42])
	assert.Contains(t, sender.sent[555], "From: Ann (id=42)")
	assert.Contains(t, sender.sent[555], "- p1 × 2 = 3980₽")
}

func TestOrderRouteRejectsForgery(t *testing.T) {
	router, sender := newTestRouter(t, "")

	forged := strings.Replace(signedInitData(), "query_id=AAA", "query_id=BBB", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/order", orderBody(t, forged, `[{"id":"p1","qty":1}]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","detail":"invalid hash"}`, rec.Body.String())
	assert.Empty(t, sender.sent)
}

func TestOrderRouteUnknownProductSendsNothing(t *testing.T) {
	router, sender := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/order", orderBody(t, signedInitData(), `[{"id":"p9","qty":1}]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"bad_request","detail":"Unknown product: p9"}`, rec.Body.String())
	assert.Empty(t, sender.sent)
}

func TestOrderRouteMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/order", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shop</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	router, _ := newTestRouter(t, dir)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/web/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
}
