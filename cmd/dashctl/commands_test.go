package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/app/dashboard"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/cache"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/metrics"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/export"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/memory"
)

var today = time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

func seed() models.Snapshot {
	planID := "p1"
	return models.Snapshot{
		Plans: []models.Plan{{ID: planID, Name: "Fiber 100", Speed: 100, Price: 1999}},
		Subscribers: []models.Subscriber{
			{ID: "s1", Name: "Ana Cruz", Email: "ana@example.com", PlanID: &planID,
				Status: models.StatusActive, JoinDate: models.NewDate(2024, time.January, 15)},
			{ID: "s2", Name: "Ben Reyes", Email: "ben@example.com", PlanID: &planID,
				Status: models.StatusActive, JoinDate: models.NewDate(2024, time.February, 20)},
		},
		Payments: []models.Payment{
			{ID: "pay1", UserID: "s2", Amount: 1500, Date: models.NewDate(2024, time.June, 1), Method: models.MethodCash},
		},
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actions := shim.New(logger, memory.NewFromSnapshot(seed()), cache.Noop{}, metrics.Nop{}, time.Minute, shim.WithClock(clock))

	router := chi.NewRouter()
	dashboard.RegisterRoutes(router, dashboard.Deps{
		Logger:   logger,
		Shim:     actions,
		Gate:     auth.NewGate(config.DefaultCredentials, jwt.NewJWTMaker("test-secret", time.Hour)),
		Health:   health.New(logger, nil),
		Registry: prometheus.NewRegistry(),
		Billing:  config.Billing{CompanyName: "WiFiNet", CurrencySymbol: "₱"},
		Limit:    config.RateLimit{RPS: 1000, Burst: 1000},
		Now:      clock,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, clock)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCmd(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Total revenue:      ₱1,500")
	assert.Contains(t, out, "Active subscribers: 2")
	assert.Contains(t, out, "Fiber 100")
}

func TestDueCmd(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "due", "--mailto")
	require.NoError(t, err)

	assert.Contains(t, out, "Ana Cruz")
	assert.Contains(t, out, "2024-06-15")
	assert.NotContains(t, out, "Ben Reyes")
	assert.Contains(t, out, "mailto:ana@example.com?subject=Your%20WiFiNet%20Bill%20is%20Due%20Soon")
}

func TestExportCmd(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	out, err := run(t, srv, "export", "--dir", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, export.FileName(today))
	assert.Contains(t, out, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	snap, err := export.Read(f)
	require.NoError(t, err)
	assert.Len(t, snap.Subscribers, 2)
	assert.Len(t, snap.Payments, 1)
}

func TestPayCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr string
	}{
		{
			name:    "collector records cash payment",
			args:    []string{"-u", "collector", "-p", "collector", "pay", "s1", "1999"},
			wantOut: "₱1,999 from Ana Cruz on 2024-06-14",
		},
		{
			name:    "e-wallet payment",
			args:    []string{"pay", "s2", "500.5", "--method", "GCash"},
			wantOut: "₱500.5 from Ben Reyes",
		},
		{
			name:    "unknown subscriber",
			args:    []string{"pay", "nope", "10"},
			wantErr: "subscriber nope not found",
		},
		{
			name:    "bad amount",
			args:    []string{"pay", "s1", "-5"},
			wantErr: "amount must be a positive number",
		},
		{
			name:    "NaN amount",
			args:    []string{"pay", "s1", "NaN"},
			wantErr: `amount must be a positive number, got "NaN"`,
		},
		{
			name:    "infinite amount",
			args:    []string{"pay", "s1", "Inf"},
			wantErr: `amount must be a positive number, got "Inf"`,
		},
		{
			name:    "overflowing amount",
			args:    []string{"pay", "s1", "1e400"},
			wantErr: "amount must be a positive number",
		},
		{
			name:    "bad method",
			args:    []string{"pay", "s1", "5", "-m", "Card"},
			wantErr: `unknown payment method "Card"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t)

			out, err := run(t, srv, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestHashPasswordCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out, clock)
	cmd.SetArgs([]string{"hash-password", "kolekta"})
	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, password.Match(hash, "kolekta"))
}

func TestLoginFailure(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, srv, "-p", "wrong", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login")
}
