package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/wifinet-dashboard/docs"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/action"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/payment/receipt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/plan/describe"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/report/export"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/report/reminders"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/handlers/report/stats"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/plandesc"
	receiptservice "github.com/magabrotheeeer/wifinet-dashboard/internal/services/receipt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
)

// Deps зависимости маршрутов.
type Deps struct {
	Logger    *slog.Logger
	Shim      *shim.Shim
	Gate      *auth.Gate
	Health    http.Handler
	Registry  *prometheus.Registry
	Billing   config.Billing
	Limit     config.RateLimit
	Now       func() time.Time
	// Describer генератор описаний тарифов; nil означает выключенный генератор.
	Describer describe.Service
}

// RegisterRoutes регистрирует все маршруты дашборда.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	biller := billing.Biller{CompanyName: d.Billing.CompanyName, CurrencySymbol: d.Billing.CurrencySymbol}
	receiptBiller := receiptservice.Biller{
		CompanyName:    d.Billing.CompanyName,
		CompanyAddress: d.Billing.CompanyAddress,
		CurrencySymbol: d.Billing.CurrencySymbol,
	}

	describer := d.Describer
	if describer == nil {
		describer = plandesc.New(config.AI{}, d.Billing.CurrencySymbol, d.Logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", login.New(d.Logger, d.Gate).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Gate, d.Logger))
			r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.Limit.RPS, d.Limit.Burst))

			exec := action.New(d.Logger, d.Shim)
			r.Get("/exec", exec.ServeHTTP)
			r.Post("/exec", exec.ServeHTTP)
			r.Get("/payments/{id}/receipt", receipt.New(d.Logger, d.Shim, receiptBiller).ServeHTTP)

			// Отчёты только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(d.Logger, auth.RoleAdmin))
				r.Get("/stats", stats.New(d.Logger, d.Shim).ServeHTTP)
				r.Get("/reminders", reminders.New(d.Logger, d.Shim, biller, d.Now).ServeHTTP)
				r.Get("/export", export.New(d.Logger, d.Shim, d.Now).ServeHTTP)
				r.Post("/plans/describe", describe.New(d.Logger, describer).ServeHTTP)
			})
		})
	})

	r.Handle("/health", d.Health)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
