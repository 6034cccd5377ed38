// file: router/router_test.go

package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go-auth-api/config"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/router"
	"go-auth-api/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// stubAuthorizer resolves every bearer token to a fixed user.
type stubAuthorizer struct {
	user *model.User
	err  error
}

func (s *stubAuthorizer) Authorize(ctx context.Context, accessToken string) (*model.User, *model.AccessClaims, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, &model.AccessClaims{Username: s.user.Username}, nil
}

type stubLimiter struct {
	status *service.RateLimitStatus
}

func (s *stubLimiter) AllowChatMessage(ctx context.Context, userID uuid.UUID) (*service.RateLimitStatus, error) {
	return s.status, nil
}
func (s *stubLimiter) ChatUsage(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	return 3, 10, nil
}
func (s *stubLimiter) ResetChat(ctx context.Context, userID uuid.UUID) error { return nil }
func (s *stubLimiter) ResetLogin(ctx context.Context, ip string) error       { return nil }

type stubFlows struct{}

func (stubFlows) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *service.TokenPair, error) {
	return nil, nil, service.ErrUserAlreadyExists
}
func (stubFlows) Login(ctx context.Context, req model.LoginRequest, ip string) (*model.User, *service.TokenPair, error) {
	return nil, nil, service.ErrInvalidCredentials
}
func (stubFlows) Refresh(ctx context.Context, refreshToken string) (*model.User, *service.TokenPair, error) {
	return nil, nil, service.ErrInvalidToken
}
func (stubFlows) Logout(ctx context.Context, refreshToken, accessToken string) error {
	return service.ErrInvalidToken
}

type stubVerifier struct{}

func (stubVerifier) SendVerification(userID uuid.UUID) error { return nil }
func (stubVerifier) VerifyEmail(token string) (uuid.UUID, error) {
	return uuid.Nil, service.ErrInvalidToken
}

type stubAccounts struct{}

func (stubAccounts) DisableUser(userID uuid.UUID) error { return nil }
func (stubAccounts) EnableUser(userID uuid.UUID) error  { return nil }

type stubRoles struct{}

func (stubRoles) UpdateUserRole(userID uuid.UUID, newRole model.Role) error { return nil }

func newTestRouter(user *model.User, chatBackend http.Handler) http.Handler {
	jwtCfg := config.JWTConfig{SecretKey: "test-secret", AccessExpiryMinutes: 30, RefreshExpiryDays: 7}
	chatCfg := config.ChatConfig{RateLimitPerMinute: 20, DailyMessageQuota: 100}
	limiter := &stubLimiter{status: &service.RateLimitStatus{Allowed: true, Current: 1, Limit: 20}}

	authHandler := handler.NewAuthHandler(stubFlows{}, stubVerifier{}, jwtCfg)
	adminHandler := handler.NewAdminHandler(stubAccounts{}, stubRoles{}, limiter)
	chatHandler := handler.NewChatHandler(limiter, chatCfg)
	mw := handler.NewMiddleware(&stubAuthorizer{user: user}, limiter, chatCfg)

	return router.NewRouter(authHandler, adminHandler, chatHandler, mw, chatBackend)
}

func TestRouter_HealthCheck(t *testing.T) {
	r := newTestRouter(&model.User{ID: uuid.New()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","service":"go-auth-api"}`, rr.Body.String())
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(&model.User{ID: uuid.New(), Username: "alice", Role: model.RoleUser}, nil)

	for _, path := range []string{"/auth/me", "/chat/usage"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRouter_Me(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "alice", Role: model.RoleUser}
	r := newTestRouter(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)
}

func TestRouter_AdminGating(t *testing.T) {
	target := "/admin/users/" + uuid.NewString() + "/disable"

	t.Run("regular user forbidden", func(t *testing.T) {
		r := newTestRouter(&model.User{ID: uuid.New(), Role: model.RoleUser}, nil)

		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		r := newTestRouter(&model.User{ID: uuid.New(), Role: model.RoleAdmin}, nil)

		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestRouter_ChatBackendBehindQuota(t *testing.T) {
	backendHit := false
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("verified user reaches the backend", func(t *testing.T) {
		backendHit = false
		r := newTestRouter(&model.User{ID: uuid.New(), Role: model.RoleUser, EmailVerified: true}, backend)

		req := httptest.NewRequest(http.MethodPost, "/chat/messages", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, backendHit)
	})

	t.Run("unverified user never reaches the backend", func(t *testing.T) {
		backendHit = false
		r := newTestRouter(&model.User{ID: uuid.New(), Role: model.RoleUser, EmailVerified: false}, backend)

		req := httptest.NewRequest(http.MethodPost, "/chat/messages", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, backendHit)
	})
}

func TestRouter_ChatUsage(t *testing.T) {
	r := newTestRouter(&model.User{ID: uuid.New(), Role: model.RoleUser, EmailVerified: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/usage", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"minute_count":3,"minute_limit":20,"daily_count":10,"daily_limit":100}`, rr.Body.String())
}
