// Package describe реализует HTTP-обработчик генерации описания тарифа.
package describe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/plandesc"
)

// Request параметры тарифа, для которого нужно описание.
type Request struct {
	Name  string  `json:"name" validate:"required"`
	Speed int     `json:"speed" validate:"gt=0"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Service генератор описаний.
type Service interface {
	Describe(ctx context.Context, name string, speed int, price float64) plandesc.Result
}

// Handler обрабатывает запросы на описание тарифа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.describe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	result := h.service.Describe(r.Context(), req.Name, req.Speed, req.Price)
	log.Info("plan description served", slog.String("plan", req.Name), slog.Bool("generated", result.Generated))
	render.JSON(w, r, response.OKWithData(result))
}
