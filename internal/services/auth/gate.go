// Package auth проверяет вход по фиксированным учётным записям и выдаёт токен сессии.
//
// Роль переключает режим интерфейса: администратору доступно всё, инкассатору
// только просмотр таблиц, приём платежей и печать квитанций.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
)

// Role роль пользователя дашборда.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
)

// ErrInvalidCredentials неверное имя пользователя или пароль.
var ErrInvalidCredentials = errors.New("invalid username or password")

var collectorActions = map[string]bool{
	shim.ActionFetchAll:   true,
	shim.ActionAddPayment: true,
}

// Allows сообщает, может ли роль выполнить действие шима.
// Имя действия может быть псевдонимом.
func (r Role) Allows(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleCollector:
		return collectorActions[shim.CanonicalAction(action)]
	}
	return false
}

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCollector
}

// Session результат успешного входа.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Token    string `json:"token"`
}

// Gate сверяет учётные данные со списком из конфига.
type Gate struct {
	credentials []config.Credential
	jwtMaker    jwt.Maker
}

// NewGate создаёт проверку входа.
func NewGate(credentials []config.Credential, jwtMaker jwt.Maker) *Gate {
	return &Gate{
		credentials: credentials,
		jwtMaker:    jwtMaker,
	}
}

// Login проверяет пару логин/пароль и выпускает токен с ролью.
// Пароль в конфиге может быть bcrypt-хешем.
func (g *Gate) Login(username, pass string) (Session, error) {
	const op = "auth.Login"

	for _, c := range g.credentials {
		userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
		if !userOK || !password.Match(c.Password, pass) {
			continue
		}
		role := Role(c.Role)
		if !role.Valid() {
			return Session{}, fmt.Errorf("%s: unknown role %q for %s", op, c.Role, c.Username)
		}
		token, err := g.jwtMaker.GenerateToken(c.Username, string(role))
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		return Session{Username: c.Username, Role: role, Token: token}, nil
	}
	return Session{}, ErrInvalidCredentials
}

// ValidateToken разбирает токен и возвращает сессию без самого токена.
func (g *Gate) ValidateToken(token string) (Session, error) {
	const op = "auth.ValidateToken"

	claims, err := g.jwtMaker.ParseToken(token)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	role := Role(claims.Role)
	if !role.Valid() {
		return Session{}, fmt.Errorf("%s: unknown role %q", op, claims.Role)
	}
	return Session{Username: claims.Username, Role: role}, nil
}
