package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/txservice/internal/config"
	"github.com/congo-pay/txservice/internal/logging"
	"github.com/congo-pay/txservice/internal/transaction"
)

func newApp(t *testing.T, cfg config.Config, cache *redis.Client) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: transaction.ErrorHandler})
	err := Setup(app, Deps{
		Cfg:      cfg,
		Cache:    cache,
		Logger:   logging.Discard(),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return app
}

func devConfig() config.Config {
	return config.Config{AppEnv: "test", IdempotencyTTL: time.Hour}
}

func do(t *testing.T, app *fiber.App, method, path, payload string) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(data)
}

const loadBody = `{"messageId":"m1","userId":"u1","transactionAmount":{"amount":"10.129","currency":"EUR","debitOrCredit":"CREDIT"}}`

func TestSetupRequiresBackendsOutsideDev(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	assert.ErrorContains(t, err, "database is required")
}

func TestPing(t *testing.T) {
	app := newApp(t, devConfig(), nil)

	resp, data := do(t, app, fiber.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		ServerTime string `json:"serverTime"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	_, err := time.Parse(time.RFC3339Nano, payload.ServerTime)
	assert.NoError(t, err)
}

func TestHealthWithoutBackends(t *testing.T) {
	app := newApp(t, devConfig(), nil)

	resp, data := do(t, app, fiber.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, data, `"postgres":"disabled"`)
	assert.Contains(t, data, `"redis":"disabled"`)
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	app := newApp(t, devConfig(), nil)

	resp, data := do(t, app, fiber.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body transaction.ErrorBody
	require.NoError(t, json.Unmarshal([]byte(data), &body))
	assert.Equal(t, "404", body.Code)
	assert.Equal(t, "/nope", body.Path)
}

func TestLoadIsCountedInMetrics(t *testing.T) {
	app := newApp(t, devConfig(), nil)

	resp, data := do(t, app, fiber.MethodPut, "/load", loadBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, data, `"amount":"10.12"`)

	resp, data = do(t, app, fiber.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, data, `txservice_operations_total{kind="load",result="APPROVED"} 1`)
}

func TestAdminResetOnlyWhenEnabled(t *testing.T) {
	app := newApp(t, devConfig(), nil)
	resp, _ := do(t, app, fiber.MethodPost, "/admin/reset", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cfg := devConfig()
	cfg.AdminEnabled = true
	app = newApp(t, cfg, nil)

	resp, _ = do(t, app, fiber.MethodPut, "/load", loadBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, app, fiber.MethodPost, "/admin/reset", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// the id is accepted again after a reset
	resp, data := do(t, app, fiber.MethodPut, "/load", loadBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, data, `"amount":"10.12"`)
}

func TestRateLimitAppliesToMutatingRoutes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	cfg := devConfig()
	cfg.RateLimitPerMinute = 1
	app := newApp(t, cfg, cache)

	resp, _ := do(t, app, fiber.MethodPut, "/load", loadBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	second := strings.Replace(loadBody, `"m1"`, `"m2"`, 1)
	resp, _ = do(t, app, fiber.MethodPut, "/load", second)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type txResult struct {
	MessageID    string `json:"messageId"`
	UserID       string `json:"userId"`
	ResponseCode string `json:"responseCode"`
	Balance      struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"balance"`
}

func doWithKey(t *testing.T, app *fiber.App, path, key, payload string) (*http.Response, txResult, transaction.ErrorBody) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPut, path, strings.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", key)
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var ok txResult
	var failed transaction.ErrorBody
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.Unmarshal(data, &ok))
	} else {
		require.NoError(t, json.Unmarshal(data, &failed))
	}
	return resp, ok, failed
}

func txBody(messageID, userID, amount, currency, direction string) string {
	return `{"messageId":"` + messageID + `","userId":"` + userID +
		`","transactionAmount":{"amount":"` + amount + `","currency":"` + currency +
		`","debitOrCredit":"` + direction + `"}}`
}

func TestIdempotencyKeyNeverBypassesProcessor(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	app := newApp(t, devConfig(), cache)

	resp, out, _ := doWithKey(t, app, "/load", "k", txBody("m1", "alice", "500", "USD", "CREDIT"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "500.00", out.Balance.Amount)

	// another user reusing the key gets their own operation applied
	resp, out, _ = doWithKey(t, app, "/load", "k", txBody("m2", "bob", "7", "EUR", "CREDIT"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "bob", out.UserID)
	assert.Equal(t, "m2", out.MessageID)
	assert.Equal(t, "EUR", out.Balance.Currency)
	assert.Equal(t, "7.00", out.Balance.Amount)

	// resending an applied message id is still a duplicate
	resp, _, failed := doWithKey(t, app, "/load", "k", txBody("m1", "alice", "500", "USD", "CREDIT"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_OPERATION_ID", failed.ErrorCode)

	// same key, same user, different request
	resp, _, failed = doWithKey(t, app, "/load", "k", txBody("m3", "alice", "1", "USD", "CREDIT"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, failed.Reason, "Idempotency-Key")

	resp, out, _ = doWithKey(t, app, "/authorization", "d1", txBody("m4", "bob", "7", "EUR", "DEBIT"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "APPROVED", out.ResponseCode)
	assert.Equal(t, "0.00", out.Balance.Amount)

	// m3 was never applied, so alice holds exactly 500
	resp, out, _ = doWithKey(t, app, "/authorization", "d2", txBody("m5", "alice", "500", "USD", "DEBIT"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "APPROVED", out.ResponseCode)
	assert.Equal(t, "0.00", out.Balance.Amount)
}
