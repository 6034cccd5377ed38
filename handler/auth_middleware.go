package handler

import (
	"context"
	"net/http"
	"strconv"

	"go-auth-api/common"
	"go-auth-api/config"
	"go-auth-api/model"
	"go-auth-api/service"

	"github.com/google/uuid"
)

// Authorizer is the enforcement point the middleware calls on every
// protected request. Implemented by service.AuthService.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (*model.User, *model.AccessClaims, error)
}

// ChatLimiter is the two-tier chat rate limiter surface the middleware and
// handlers need. Implemented by service.RateLimiterService.
type ChatLimiter interface {
	AllowChatMessage(ctx context.Context, userID uuid.UUID) (*service.RateLimitStatus, error)
	ChatUsage(ctx context.Context, userID uuid.UUID) (minute, daily int64, err error)
	ResetChat(ctx context.Context, userID uuid.UUID) error
	ResetLogin(ctx context.Context, ip string) error
}

// Middleware bundles the request gates: authentication, admin authorization
// and the chat quota.
type Middleware struct {
	auth    Authorizer
	chat    ChatLimiter
	chatCfg config.ChatConfig
}

// NewMiddleware creates the middleware set.
func NewMiddleware(auth Authorizer, chat ChatLimiter, chatCfg config.ChatConfig) *Middleware {
	return &Middleware{auth: auth, chat: chat, chatCfg: chatCfg}
}

// Authenticate verifies the bearer access token (signature, expiry,
// blacklist — the blacklist check fails closed) and loads the user row fresh
// so role and disabled status are current. The user is injected into the
// request context for downstream handlers.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil).Send(w)
			return
		}

		user, _, err := m.auth.Authorize(r.Context(), token)
		if err != nil {
			ToAppError(err).Send(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireAdmin gates admin-only operations. Must run after Authenticate; the
// role comes from the freshly loaded user row, never from token claims.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil).Send(w)
			return
		}
		if user.Role != model.RoleAdmin {
			common.NewAppError(http.StatusForbidden, "Access denied. Admin privileges required.", nil).Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ChatQuota gates chat message requests with the two-tier limiter. The user
// must have a verified email; a rejected request gets a Retry-After hint and
// consumes no quota.
func (m *Middleware) ChatQuota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil).Send(w)
			return
		}
		if !user.EmailVerified {
			ToAppError(service.ErrEmailNotVerified).Send(w)
			return
		}

		status, err := m.chat.AllowChatMessage(r.Context(), user.ID)
		if err != nil {
			ToAppError(err).Send(w)
			return
		}
		if !status.Allowed {
			retryAfter := int(status.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			common.NewAppError(http.StatusTooManyRequests, "Too many requests", nil).
				WithHeader("Retry-After", strconv.Itoa(retryAfter)).
				Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
