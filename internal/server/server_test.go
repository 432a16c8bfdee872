package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-shop-assistant/server/internal/agent/cart"
	"github.com/Chative-shop-assistant/server/internal/agent/catalog"
	"github.com/Chative-shop-assistant/server/internal/agent/fallback"
	"github.com/Chative-shop-assistant/server/internal/agent/model"
	"github.com/Chative-shop-assistant/server/internal/agent/reply"
	"github.com/Chative-shop-assistant/server/internal/agent/repo"
	"github.com/Chative-shop-assistant/server/internal/agent/router"
	errx "github.com/Chative-shop-assistant/server/internal/core/error"
)

func newTestServer(t *testing.T, staticDir string) *httptest.Server {
	t.Helper()
	c, err := catalog.New([]model.Product{
		{ID: "1", Name: "Red Shirt", Price: 500},
		{ID: "2", Name: "Blue Jeans", Price: 1500},
	})
	require.NoError(t, err)

	r, err := router.New(router.Config{
		Catalog:    c,
		Sessions:   repo.NewMemorySessionRepository(time.Hour),
		Fallback:   fallback.NewGuard(nil, 0),
		Formatter:  reply.NewFormatter(model.CatalogConfig{ImageDir: "images", ImageExt: ".jpg", Currency: "₹"}),
		NewOrderID: func() string { return "1001" },
	})
	require.NoError(t, err)

	metrics := NewMetrics()
	srv := NewServer(model.ServerConfig{StaticDir: staticDir}, NewHandler(r, metrics), metrics)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func chat(t *testing.T, ts *httptest.Server, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatFlow(t *testing.T) {
	ts := newTestServer(t, "")

	status, out := chat(t, ts, `{"message":"hello","session_id":"s1"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "greeting", out["intent"])
	assert.Equal(t, "s1", out["session_id"])

	_, out = chat(t, ts, `{"message":"add red shirt to cart","session_id":"s1"}`)
	assert.Equal(t, "add_to_cart", out["intent"])

	_, out = chat(t, ts, `{"message":"checkout","session_id":"s1"}`)
	assert.Equal(t, "checkout", out["intent"])
	assert.Equal(t, "1001", out["order_id"])
	assert.EqualValues(t, 500, out["order_total"])
	assert.Contains(t, out["reply"], "Red Shirt x1 - ₹500")

	_, out = chat(t, ts, `{"message":"products under 1000","session_id":"s1"}`)
	atts, ok := out["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, atts, 1)
	assert.Equal(t, "images/red-shirt.jpg", atts[0].(map[string]any)["image"])
}

func TestChatMissingMessage(t *testing.T) {
	ts := newTestServer(t, "")
	for _, body := range []string{`{}`, `{"message":"  "}`, `not json`, `{"message":42}`} {
		status, out := chat(t, ts, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, reply.NoMessageText, out["reply"], body)
	}
}

func TestAPIChatAlias(t *testing.T) {
	ts := newTestServer(t, "")
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"prices"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "list_prices", out["intent"])
	assert.Equal(t, model.DefaultSessionID, out["session_id"])
}

func TestFallbackDegradesToApology(t *testing.T) {
	ts := newTestServer(t, "")
	status, out := chat(t, ts, `{"message":"purple hat"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, reply.ApologyText, out["reply"])
	assert.NotContains(t, out, "degraded")
}

func TestSessions(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	var created SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	_, err = uuid.Parse(created.SessionID)
	require.NoError(t, err)

	id := created.SessionID
	chat(t, ts, `{"message":"add blue jeans to cart","session_id":"`+id+`"}`)
	chat(t, ts, `{"message":"add blue jeans to cart","session_id":"`+id+`"}`)

	resp, err = http.Get(ts.URL + "/sessions/" + id + "/cart")
	require.NoError(t, err)
	var c CartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	resp.Body.Close()
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, int64(3000), c.Total)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+id+"/cart", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, out := chat(t, ts, `{"message":"cart","session_id":"`+id+`"}`)
	assert.Equal(t, reply.CartEmptyText, out["reply"])

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, "")
	chat(t, ts, `{"message":"hello"}`)
	chat(t, ts, `{"message":"purple hat"}`)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `shopbot_intents_total{intent="greeting"} 1`)
	assert.Contains(t, string(body), `shopbot_fallback_degraded_total 1`)
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shop</h1>"), 0o644))
	ts := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "shop")
}

type failingBot struct{}

func (failingBot) Handle(context.Context, string, string) model.Reply {
	return model.Reply{Intent: model.IntentError, Text: reply.SystemErrorText}
}

func (failingBot) Cart(context.Context, string) (cart.Summary, error) {
	return cart.Summary{}, errors.New("boom")
}

func (failingBot) ClearCart(context.Context, string) (model.Reply, error) {
	return model.Reply{}, errx.WrapRedis(errors.New("connection refused"))
}

func (failingBot) Reset(context.Context, string) error {
	return errors.New("boom")
}

func TestHandlerErrors(t *testing.T) {
	srv := NewServer(model.ServerConfig{}, NewHandler(failingBot{}, nil), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	status, out := chat(t, ts, `{"message":"cart"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", out["intent"])

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/x/cart", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, reply.SystemErrorText, e.Message)

	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/sessions/x", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/sessions/x/cart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
