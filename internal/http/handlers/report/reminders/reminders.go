// Package reminders отдаёт абонентов, которым скоро платить, вместе с готовой
// ссылкой mailto для письма-напоминания.
package reminders

import (
	"context"
	"log/slog"
	"net/http"
	"time"

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

// Item напоминание с письмом.
type Item struct {
	billing.Reminder
	Letter billing.Letter `json:"letter"`
	Mailto string         `json:"mailto"`
}

// Handler обрабатывает GET /api/v1/reminders.
type Handler struct {
	log     *slog.Logger
	service Service
	biller  billing.Biller
	now     func() time.Time
}

// New создаёт Handler. now задаёт текущую дату расчёта.
func New(log *slog.Logger, service Service, biller billing.Biller, now func() time.Time) *Handler {
	return &Handler{log: log, service: service, biller: biller, now: now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.reminders"

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

	items := []Item{}
	for rem := range billing.DueSoon(snap, h.now()) {
		letter := h.biller.Letter(rem)
		items = append(items, Item{Reminder: rem, Letter: letter, Mailto: letter.MailtoURI()})
	}

	log.Info("reminders computed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(items))
}
