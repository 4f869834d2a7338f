// Package receipt отдаёт квитанцию по платежу отдельной HTML-страницей,
// готовой к печати.
package receipt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/receipt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

// Service читает снимок таблиц.
type Service interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Handler обрабатывает GET /api/v1/payments/{id}/receipt.
type Handler struct {
	log     *slog.Logger
	service Service
	biller  receipt.Biller
}

// New создаёт Handler.
func New(log *slog.Logger, service Service, biller receipt.Biller) *Handler {
	return &Handler{log: log, service: service, biller: biller}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.receipt"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		log.Error("failed to read tables", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read tables"))
		return
	}

	rec, err := receipt.Build(snap, id, h.biller)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn("payment not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("payment "+id+" not found"))
		return
	}
	if err != nil {
		log.Error("failed to build receipt", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build receipt"))
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, rec); err != nil {
		log.Error("failed to render receipt", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not render receipt"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write receipt", sl.Err(err))
	}
}
