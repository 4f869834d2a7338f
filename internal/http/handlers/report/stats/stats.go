// Package stats отдаёт сводку главной страницы: выручку, число активных
// абонентов, число тарифов и распределение абонентов по тарифам.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

// Service читает снимок таблиц.
type Service interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Handler обрабатывает GET /api/v1/stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		log.Error("failed to read tables", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read tables"))
		return
	}

	render.JSON(w, r, response.OKWithData(billing.Stats(snap)))
}
