// Package middlewarectx содержит HTTP middleware дашборда: проверку токена сессии,
// ограничение по роли и ограничение частоты запросов.
//
// JWTMiddleware кладёт в контекст имя пользователя и роль; обработчики читают их
// через RoleFrom.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User ключ для имени пользователя в контексте.
	User Key = "username"
	// Role ключ для роли пользователя в контексте.
	Role Key = "role"
)

// Service проверяет токен сессии.
type Service interface {
	ValidateToken(token string) (auth.Session, error)
}

// RoleFrom возвращает роль из контекста запроса.
func RoleFrom(ctx context.Context) (auth.Role, bool) {
	role, ok := ctx.Value(Role).(auth.Role)
	return role, ok
}

// WithSession кладёт пользователя и роль в контекст.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	ctx = context.WithValue(ctx, User, s.Username)
	return context.WithValue(ctx, Role, s.Role)
}

// JWTMiddleware проверяет токен из заголовка Authorization: Bearer.
// При ошибке отвечает 401.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			session, err := authService.ValidateToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireRole пропускает только запросы с одной из ролей roles, остальным отвечает 403.
func RequireRole(log *slog.Logger, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := RoleFrom(r.Context())
			if !slices.Contains(roles, role) {
				log.Warn("role not permitted",
					slog.String("role", string(role)),
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("not permitted for role "+string(role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
