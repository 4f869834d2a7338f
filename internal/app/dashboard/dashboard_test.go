package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/plandesc"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/driver"
)

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		Env:             "local",
		Storage:         config.Storage{Driver: driver.Memory},
		RedisConnection: config.RedisConnection{AddressRedis: redisAddr, SnapshotTTL: time.Minute},
		HTTPServer:      config.HTTPServer{AddressHTTP: "127.0.0.1:0", TimeoutHTTP: 5 * time.Second, IdleTimeout: time.Minute},
		JWTToken:        config.JWTToken{JWTSecretKey: "test-secret", TokenTTL: time.Hour},
		Auth:            config.Auth{Credentials: config.DefaultCredentials},
		RateLimit:       config.RateLimit{RPS: 1000, Burst: 1000},
		Billing:         config.Billing{CompanyName: "WiFiNet", CompanyAddress: "123 Internet Lane", CurrencySymbol: "₱"},
	}
}

func newTestApp(t *testing.T, redisAddr string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := New(context.Background(), testConfig(redisAddr), logger)
	require.NoError(t, err)
	t.Cleanup(app.close)
	return app.Handler()
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, h http.Handler, user string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/login", "", `{"username":"`+user+`","password":"`+user+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestApp_Routes(t *testing.T) {
	h := newTestApp(t, "")
	admin := loginAs(t, h, "admin")
	collector := loginAs(t, h, "collector")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"exec without token", http.MethodPost, "/api/v1/exec", "", `{"action":"GET_ALL_DATA"}`, http.StatusUnauthorized},
		{"exec get", http.MethodGet, "/api/v1/exec", collector, "", http.StatusOK},
		{"exec text/plain body", http.MethodPost, "/api/v1/exec", admin, `{"action":"ADD_PRODUCT","payload":{"name":"Basic","speed":25,"price":999}}`, http.StatusOK},
		{"collector cannot add plan", http.MethodPost, "/api/v1/exec", collector, `{"action":"ADD_PRODUCT","payload":{"name":"Basic","speed":25,"price":999}}`, http.StatusForbidden},
		{"unknown action", http.MethodPost, "/api/v1/exec", admin, `{"action":"DROP_TABLES"}`, http.StatusUnprocessableEntity},
		{"stats admin", http.MethodGet, "/api/v1/stats", admin, "", http.StatusOK},
		{"stats collector", http.MethodGet, "/api/v1/stats", collector, "", http.StatusForbidden},
		{"reminders admin", http.MethodGet, "/api/v1/reminders", admin, "", http.StatusOK},
		{"export admin", http.MethodGet, "/api/v1/export", admin, "", http.StatusOK},
		{"export collector", http.MethodGet, "/api/v1/export", collector, "", http.StatusForbidden},
		{"describe plan admin", http.MethodPost, "/api/v1/plans/describe", admin, `{"name":"Basic","speed":25,"price":999}`, http.StatusOK},
		{"describe plan collector", http.MethodPost, "/api/v1/plans/describe", collector, `{"name":"Basic","speed":25,"price":999}`, http.StatusForbidden},
		{"receipt unknown payment", http.MethodGet, "/api/v1/payments/nope/receipt", collector, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestApp_ActionCountedInMetrics(t *testing.T) {
	h := newTestApp(t, "")
	token := loginAs(t, h, "admin")

	rec := do(t, h, http.MethodGet, "/api/v1/exec", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Contains(t, rec.Body.String(), `wifinet_actions_total{action="GET_ALL_DATA",status="success"} 1`)
}

func TestApp_WithRedisSnapshotCache(t *testing.T) {
	mr := miniredis.RunT(t)
	h := newTestApp(t, mr.Addr())
	token := loginAs(t, h, "admin")

	rec := do(t, h, http.MethodGet, "/api/v1/exec", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mr.Exists("wifinet:snapshot"))

	rec = do(t, h, http.MethodPost, "/api/v1/exec", token, `{"action":"ADD_PRODUCT","payload":{"name":"Basic","speed":25,"price":999}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mr.Exists("wifinet:snapshot"))
}

func TestApp_PlanDescriptionWithoutAPIKey(t *testing.T) {
	h := newTestApp(t, "")
	token := loginAs(t, h, "admin")

	rec := do(t, h, http.MethodPost, "/api/v1/plans/describe", token, `{"name":"Fiber 100","speed":100,"price":1999}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data plandesc.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, plandesc.UnavailableText, resp.Data.Description)
	assert.False(t, resp.Data.Generated)
}

func TestApp_APIDocs(t *testing.T) {
	h := newTestApp(t, "")

	rec := do(t, h, http.MethodGet, "/docs/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string         `json:"basePath"`
		Paths    map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/exec")
	assert.Contains(t, doc.Paths, "/payments/{id}/receipt")
}

func TestApp_UnknownDriver(t *testing.T) {
	cfg := testConfig("")
	cfg.Driver = "sheets"
	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
