package router

import (
	"net/http"

	"go-auth-api/common"
	"go-auth-api/handler"
)

// NewRouter builds the route table. chatBackend is the external chat
// subsystem; it is mounted behind the full gate chain (authenticate, then
// quota) and only ever sees requests with a verified identity and remaining
// quota.
func NewRouter(
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	chatHandler *handler.ChatHandler,
	mw *handler.Middleware,
	chatBackend http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))
	mux.Handle("POST /auth/verify-email", handler.ErrorHandlingMiddleware(authHandler.VerifyEmail))

	mux.Handle("GET /auth/me",
		mw.Authenticate(handler.ErrorHandlingMiddleware(authHandler.Me)))
	mux.Handle("POST /auth/verify-email/send",
		mw.Authenticate(handler.ErrorHandlingMiddleware(authHandler.SendVerification)))

	mux.Handle("GET /chat/usage",
		mw.Authenticate(handler.ErrorHandlingMiddleware(chatHandler.Usage)))
	if chatBackend != nil {
		mux.Handle("POST /chat/messages",
			mw.Authenticate(mw.ChatQuota(chatBackend)))
	}

	admin := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return mw.Authenticate(mw.RequireAdmin(handler.ErrorHandlingMiddleware(h)))
	}
	mux.Handle("POST /admin/users/{id}/disable", admin(adminHandler.DisableUser))
	mux.Handle("POST /admin/users/{id}/enable", admin(adminHandler.EnableUser))
	mux.Handle("PUT /admin/users/{id}/role", admin(adminHandler.UpdateUserRole))
	mux.Handle("POST /admin/users/{id}/rate-limit/reset", admin(adminHandler.ResetChatLimit))
	mux.Handle("POST /admin/rate-limit/login/reset", admin(adminHandler.ResetLoginLimit))

	return mux
}
