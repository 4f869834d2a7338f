// Package action реализует единую HTTP-точку шима: POST /api/v1/exec
// с телом {"action": ..., "payload": ...}.
//
// Тело читается как JSON независимо от Content-Type: браузерный клиент шлёт его
// как text/plain. GET на тот же путь возвращает все таблицы.
package action

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
)

const maxBodyBytes = 1 << 20

// Service выполняет команды шима.
type Service interface {
	Execute(ctx context.Context, cmd shim.Command) (any, error)
}

// Handler обрабатывает запросы к шиму.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.action"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cmd, err := h.command(w, r)
	if err != nil {
		log.Error("failed to decode command", sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}
	log = log.With(slog.String("action", cmd.Action()))

	role, _ := middlewarectx.RoleFrom(r.Context())
	if !role.Allows(cmd.Action()) {
		log.Warn("action not permitted", slog.String("role", string(role)))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("action "+cmd.Action()+" is not permitted for role "+string(role)))
		return
	}

	result, err := h.service.Execute(r.Context(), cmd)
	if err != nil {
		log.Error("action failed", sl.Err(err))
		render.Status(r, response.HTTPStatus(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("action executed")
	render.JSON(w, r, response.OKWithData(result))
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request) (shim.Command, error) {
	if r.Method == http.MethodGet {
		return shim.FetchAll{}, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Join(shim.ErrMalformedPayload, err)
	}
	var req shim.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.Join(shim.ErrMalformedPayload, err)
	}
	if req.Action == "" {
		return nil, errors.Join(shim.ErrMalformedPayload, errors.New("action is required"))
	}
	return shim.ParseCommand(req.Action, req.Payload)
}
