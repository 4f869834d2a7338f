package stats

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Snapshot(ctx context.Context) (models.Snapshot, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(models.Snapshot)
	return s, args.Error(1)
}

func TestStatsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	plan := "p1"

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "summary",
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything).Return(models.Snapshot{
					Subscribers: []models.Subscriber{{ID: "u1", PlanID: &plan, Status: models.StatusActive}},
					Plans:       []models.Plan{{ID: "p1", Name: "Basic"}},
					Payments:    []models.Payment{{ID: "x", Amount: 1500}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"success","data":{"totalRevenue":1500,"activeSubscribers":1,"planCount":1,"perPlan":[{"planId":"p1","name":"Basic","users":1}]}}`,
		},
		{
			name: "store failure",
			setupMock: func(m *MockService) {
				m.On("Snapshot", mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"error","message":"could not read tables"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			rec := httptest.NewRecorder()
			New(logger, m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			m.AssertExpectations(t)
		})
	}
}
