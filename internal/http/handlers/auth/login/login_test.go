package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(username, password string) (auth.Session, error) {
	args := m.Called(username, password)
	s, _ := args.Get(0).(auth.Session)
	return s, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock)

	tests := []struct {
		name           string
		requestBody    any
		mockResp       *auth.Session
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantMessage    string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "admin", Password: "admin"},
			mockResp:       &auth.Session{Username: "admin", Role: auth.RoleAdmin, Token: "tok"},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":    "tok",
				"role":     "admin",
				"username": "admin",
			},
			wantStatus: "success",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "invalid request body",
			wantStatus:     "error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "admin"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantMessage:    "field Password is a required field",
			wantStatus:     "error",
		},
		{
			name:           "wrong credentials",
			requestBody:    Request{Username: "admin", Password: "nope"},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantMessage:    "Invalid username or password.",
			wantStatus:     "error",
		},
		{
			name:           "token error",
			requestBody:    Request{Username: "admin", Password: "admin"},
			mockErr:        errors.New("sign failed"),
			wantStatusCode: http.StatusInternalServerError,
			wantMessage:    "login failed",
			wantStatus:     "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.mockResp != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", req.Username, req.Password).Return(*tt.mockResp, nil).Once()
			} else if tt.mockErr != nil {
				req := tt.requestBody.(Request)
				authMock.On("Login", req.Username, req.Password).Return(nil, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			} else {
				assert.Nil(t, got["message"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			} else {
				assert.Nil(t, got["data"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
