package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, cmd shim.Command) (any, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestActionHandler(t *testing.T) {
	payment := models.Payment{ID: "x", UserID: "u1", Amount: 999, Date: models.NewDate(2024, 6, 14), Method: models.MethodCash}

	tests := []struct {
		name           string
		method         string
		body           string
		contentType    string
		role           auth.Role
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "add payment as collector with text/plain body",
			method:      http.MethodPost,
			body:        `{"action":"ADD_PAYMENT","payload":{"userId":"u1","amount":999,"method":"Cash"}}`,
			contentType: "text/plain;charset=utf-8",
			role:        auth.RoleCollector,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, shim.AddPayment{Input: models.PaymentInput{UserID: "u1", Amount: 999, Method: models.MethodCash}}).
					Return(payment, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success","data":{"id":"x","userId":"u1","amount":999,"date":"2024-06-14","method":"Cash"}`,
		},
		{
			name:   "get returns all data",
			method: http.MethodGet,
			role:   auth.RoleCollector,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, shim.FetchAll{}).Return(models.Snapshot{}.Clone(), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"data":{"users":[],"products":[],"payments":[]}`,
		},
		{
			name:           "malformed body",
			method:         http.MethodPost,
			body:           `not json`,
			role:           auth.RoleAdmin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"error"`,
		},
		{
			name:           "missing action",
			method:         http.MethodPost,
			body:           `{"payload":{}}`,
			role:           auth.RoleAdmin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `action is required`,
		},
		{
			name:           "unknown action",
			method:         http.MethodPost,
			body:           `{"action":"DROP_ALL"}`,
			role:           auth.RoleAdmin,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `unknown action`,
		},
		{
			name:           "collector cannot delete",
			method:         http.MethodPost,
			body:           `{"action":"delete-subscriber","payload":{"id":"u1"}}`,
			role:           auth.RoleCollector,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `is not permitted for role collector`,
		},
		{
			name:   "not found",
			method: http.MethodPost,
			body:   `{"action":"DELETE_USER","payload":{"id":"ghost"}}`,
			role:   auth.RoleAdmin,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, shim.DeleteSubscriber{ID: "ghost"}).
					Return(nil, fmt.Errorf("shim.deleteSubscriber: %w", storage.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"message":"shim.deleteSubscriber: row not found"`,
		},
		{
			name:   "validation",
			method: http.MethodPost,
			body:   `{"action":"ADD_PRODUCT","payload":{"name":"Basic","speed":0}}`,
			role:   auth.RoleAdmin,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, shim.AddPlan{Input: models.PlanInput{Name: "Basic"}}).
					Return(nil, fmt.Errorf("%w: field speed must be greater than 0", shim.ErrValidation)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field speed must be greater than 0`,
		},
		{
			name:   "store failure",
			method: http.MethodPost,
			body:   `{"action":"GET_ALL_DATA"}`,
			role:   auth.RoleAdmin,
			setupMock: func(m *MockService) {
				m.On("Execute", mock.Anything, shim.FetchAll{}).Return(nil, errors.New("connection refused")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"error","message":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)
			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(tt.method, "/api/v1/exec", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			req = req.WithContext(middlewarectx.WithSession(ctx, auth.Session{Username: "u", Role: tt.role}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)

			var env map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

			mockService.AssertExpectations(t)
		})
	}
}
