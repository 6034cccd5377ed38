// handler/auth_handler_test.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-auth-api/config"
	"go-auth-api/model"
	"go-auth-api/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthFlows struct{ mock.Mock }

func (m *mockAuthFlows) Register(ctx context.Context, req model.RegisterRequest) (*model.User, *service.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*service.TokenPair), args.Error(2)
}
func (m *mockAuthFlows) Login(ctx context.Context, req model.LoginRequest, ip string) (*model.User, *service.TokenPair, error) {
	args := m.Called(ctx, req, ip)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*service.TokenPair), args.Error(2)
}
func (m *mockAuthFlows) Refresh(ctx context.Context, refreshToken string) (*model.User, *service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*service.TokenPair), args.Error(2)
}
func (m *mockAuthFlows) Logout(ctx context.Context, refreshToken, accessToken string) error {
	args := m.Called(ctx, refreshToken, accessToken)
	return args.Error(0)
}

type mockEmailVerifier struct{ mock.Mock }

func (m *mockEmailVerifier) SendVerification(userID uuid.UUID) error {
	args := m.Called(userID)
	return args.Error(0)
}
func (m *mockEmailVerifier) VerifyEmail(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func newAuthHandlerTest() (*AuthHandler, *mockAuthFlows, *mockEmailVerifier) {
	auth := new(mockAuthFlows)
	verifier := new(mockEmailVerifier)
	jwtCfg := config.JWTConfig{SecretKey: "test-secret", AccessExpiryMinutes: 30, RefreshExpiryDays: 7}
	return NewAuthHandler(auth, verifier, jwtCfg), auth, verifier
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created with cookie, refresh token absent from body", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		user := &model.User{ID: uuid.New(), Username: "alice"}
		pair := &service.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt", ExpiresIn: 1800}
		auth.On("Register", mock.Anything, mock.AnythingOfType("model.RegisterRequest")).Return(user, pair, nil).Once()

		body := `{"username":"alice","email":"alice@example.com","password":"correct horse battery"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.Register(rr, req)

		assert.Nil(t, appErr)
		assert.Equal(t, http.StatusCreated, rr.Code)

		cookie := refreshCookie(t, rr)
		assert.NotNil(t, cookie)
		assert.Equal(t, "refresh-jwt", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, "/auth", cookie.Path)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

		var resp model.TokenPairResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "access-jwt", resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.NotContains(t, rr.Body.String(), "refresh-jwt")
	})

	t.Run("invalid payload", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()

		body := `{"username":"alice","email":"not-an-email","password":"correct horse battery"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.Register(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		auth.AssertNotCalled(t, "Register")
	})

	t.Run("duplicate user maps to 409", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Register", mock.Anything, mock.Anything).Return(nil, nil, service.ErrUserAlreadyExists).Once()

		body := `{"username":"alice","email":"alice@example.com","password":"correct horse battery"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.Register(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusConflict, appErr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("forwards the client IP to the rate limiter", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		user := &model.User{ID: uuid.New(), Username: "alice"}
		pair := &service.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt", ExpiresIn: 1800}
		auth.On("Login", mock.Anything, mock.AnythingOfType("model.LoginRequest"), "203.0.113.7").Return(user, pair, nil).Once()

		body := `{"username":"alice","password":"correct horse battery"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rr := httptest.NewRecorder()

		appErr := h.Login(rr, req)

		assert.Nil(t, appErr)
		assert.Equal(t, http.StatusOK, rr.Code)
		auth.AssertExpectations(t)
	})

	t.Run("rate limit error carries Retry-After", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, &service.RateLimitError{Limit: 5, Current: 5, RetryAfter: 2 * time.Minute}).Once()

		body := `{"username":"alice","password":"correct horse battery"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.Login(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusTooManyRequests, appErr.Code)
		appErr.Send(rr)
		assert.Equal(t, "120", rr.Header().Get("Retry-After"))
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, service.ErrInvalidCredentials).Once()

		body := `{"username":"alice","password":"wrong password"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.Login(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates the cookie token", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		user := &model.User{ID: uuid.New(), Username: "alice"}
		pair := &service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 1800}
		auth.On("Refresh", mock.Anything, "old-refresh").Return(user, pair, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})
		rr := httptest.NewRecorder()

		appErr := h.Refresh(rr, req)

		assert.Nil(t, appErr)
		cookie := refreshCookie(t, rr)
		assert.NotNil(t, cookie)
		assert.Equal(t, "new-refresh", cookie.Value)
	})

	t.Run("missing cookie", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		rr := httptest.NewRecorder()

		appErr := h.Refresh(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
		auth.AssertNotCalled(t, "Refresh")
	})

	t.Run("replayed token maps to 401", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Refresh", mock.Anything, "stolen-refresh").Return(nil, nil, service.ErrInvalidToken).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "stolen-refresh"})
		rr := httptest.NewRecorder()

		appErr := h.Refresh(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("clears the cookie", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Logout", mock.Anything, "the-refresh", "the-access").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "the-refresh"})
		req.Header.Set("Authorization", "Bearer the-access")
		rr := httptest.NewRecorder()

		appErr := h.Logout(rr, req)

		assert.Nil(t, appErr)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		cookie := refreshCookie(t, rr)
		assert.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
		auth.AssertExpectations(t)
	})

	t.Run("second logout maps to 401", func(t *testing.T) {
		h, auth, _ := newAuthHandlerTest()
		auth.On("Logout", mock.Anything, "the-refresh", "").Return(service.ErrTokenBlacklisted).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "the-refresh"})
		rr := httptest.NewRecorder()

		appErr := h.Logout(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	validToken := strings.Repeat("ab", 32)

	t.Run("success", func(t *testing.T) {
		h, _, verifier := newAuthHandlerTest()
		verifier.On("VerifyEmail", validToken).Return(uuid.New(), nil).Once()

		body := `{"token":"` + validToken + `"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.VerifyEmail(rr, req)

		assert.Nil(t, appErr)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("structurally invalid token never reaches the service", func(t *testing.T) {
		h, _, verifier := newAuthHandlerTest()

		body := `{"token":"zz-not-hex"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.VerifyEmail(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		verifier.AssertNotCalled(t, "VerifyEmail")
	})

	t.Run("consumed token maps to 401", func(t *testing.T) {
		h, _, verifier := newAuthHandlerTest()
		verifier.On("VerifyEmail", validToken).Return(uuid.Nil, service.ErrInvalidToken).Once()

		body := `{"token":"` + validToken + `"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()

		appErr := h.VerifyEmail(rr, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	})
}
