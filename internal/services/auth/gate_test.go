package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
)

type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role string) (string, error) {
	args := m.Called(username, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Claims), args.Error(1)
}

func TestGate_Login(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(m *JwtMakerMock)
		wantRole   auth.Role
		wantErr    error
	}{
		{
			name:     "admin",
			username: "admin",
			password: "admin",
			setupMocks: func(m *JwtMakerMock) {
				m.On("GenerateToken", "admin", "admin").Return("token-a", nil)
			},
			wantRole: auth.RoleAdmin,
		},
		{
			name:     "collector",
			username: "collector",
			password: "collector",
			setupMocks: func(m *JwtMakerMock) {
				m.On("GenerateToken", "collector", "collector").Return("token-c", nil)
			},
			wantRole: auth.RoleCollector,
		},
		{
			name:       "wrong password",
			username:   "admin",
			password:   "collector",
			setupMocks: func(m *JwtMakerMock) {},
			wantErr:    auth.ErrInvalidCredentials,
		},
		{
			name:       "unknown user",
			username:   "root",
			password:   "root",
			setupMocks: func(m *JwtMakerMock) {},
			wantErr:    auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := new(JwtMakerMock)
			tt.setupMocks(maker)
			gate := auth.NewGate(config.DefaultCredentials, maker)

			session, err := gate.Login(tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				maker.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, session.Role)
			assert.NotEmpty(t, session.Token)
			maker.AssertExpectations(t)
		})
	}
}

func TestGate_LoginTokenError(t *testing.T) {
	maker := new(JwtMakerMock)
	maker.On("GenerateToken", "admin", "admin").Return("", errors.New("sign failed"))

	_, err := auth.NewGate(config.DefaultCredentials, maker).Login("admin", "admin")
	assert.Error(t, err)
}

func TestGate_ValidateTokenRoundTrip(t *testing.T) {
	gate := auth.NewGate(config.DefaultCredentials, jwt.NewJWTMaker("secret", time.Hour))

	session, err := gate.Login("collector", "collector")
	require.NoError(t, err)

	got, err := gate.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "collector", got.Username)
	assert.Equal(t, auth.RoleCollector, got.Role)

	_, err = gate.ValidateToken("garbage")
	assert.Error(t, err)
}

func TestGate_LoginHashedPassword(t *testing.T) {
	hash, err := password.GetHash("kolekta")
	require.NoError(t, err)

	creds := []config.Credential{{Username: "juan", Password: hash, Role: "collector"}}
	gate := auth.NewGate(creds, jwt.NewJWTMaker("secret", time.Hour))

	session, err := gate.Login("juan", "kolekta")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCollector, session.Role)

	_, err = gate.Login("juan", hash)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRole_Allows(t *testing.T) {
	tests := []struct {
		role   auth.Role
		action string
		want   bool
	}{
		{auth.RoleAdmin, "DELETE_USER", true},
		{auth.RoleAdmin, "add-plan", true},
		{auth.RoleCollector, "GET_ALL_DATA", true},
		{auth.RoleCollector, "add-payment", true},
		{auth.RoleCollector, "ADD_USER", false},
		{auth.RoleCollector, "DELETE_PAYMENT", false},
		{auth.Role("guest"), "GET_ALL_DATA", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Allows(tt.action), "%s %s", tt.role, tt.action)
	}
}
