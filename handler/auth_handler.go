package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go-auth-api/common"
	"go-auth-api/config"
	"go-auth-api/model"
	"go-auth-api/service"

	"github.com/google/uuid"
)

const refreshCookieName = "refresh_token"

// AuthFlows is the orchestrator surface the HTTP handlers consume.
// Implemented by service.AuthService.
type AuthFlows interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, *service.TokenPair, error)
	Login(ctx context.Context, req model.LoginRequest, ip string) (*model.User, *service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.User, *service.TokenPair, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

// EmailVerifier is the verification surface the HTTP handlers consume.
// Implemented by service.VerificationService.
type EmailVerifier interface {
	SendVerification(userID uuid.UUID) error
	VerifyEmail(token string) (uuid.UUID, error)
}

// AuthHandler exposes the register/login/refresh/logout/verify endpoints.
type AuthHandler struct {
	auth     AuthFlows
	verifier EmailVerifier
	jwtCfg   config.JWTConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthFlows, verifier EmailVerifier, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{auth: auth, verifier: verifier, jwtCfg: jwtCfg}
}

// The refresh token travels only in an HttpOnly cookie scoped to the auth
// endpoints; it never appears in a response body.
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) writeTokenResponse(w http.ResponseWriter, status int, user *model.User, pair *service.TokenPair) {
	h.setRefreshCookie(w, pair.RefreshToken, int(h.jwtCfg.RefreshTTL().Seconds()))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.TokenPairResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   pair.ExpiresIn,
		User:        user,
	})
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account and returns a token pair; the refresh token is set as an HttpOnly cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201 {object} model.TokenPairResponse
// @Failure      400 {object} common.AppError
// @Failure      409 {object} common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.DecodeAndValidate(r, &req); appErr != nil {
		return appErr
	}

	user, pair, err := h.auth.Register(r.Context(), req)
	if err != nil {
		return ToAppError(err)
	}

	h.writeTokenResponse(w, http.StatusCreated, user, pair)
	return nil
}

// Login godoc
// @Summary      Authenticate a user
// @Description  Verifies credentials and returns a token pair; rate-limited per origin IP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200 {object} model.TokenPairResponse
// @Failure      401 {object} common.AppError
// @Failure      429 {object} common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.DecodeAndValidate(r, &req); appErr != nil {
		return appErr
	}

	user, pair, err := h.auth.Login(r.Context(), req, clientIP(r))
	if err != nil {
		return ToAppError(err)
	}

	h.writeTokenResponse(w, http.StatusOK, user, pair)
	return nil
}

// Refresh godoc
// @Summary      Rotate the refresh token
// @Description  Exchanges the refresh token cookie for a new token pair; the old refresh token is invalidated
// @Tags         auth
// @Produce      json
// @Success      200 {object} model.TokenPairResponse
// @Failure      401 {object} common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return common.NewAppError(http.StatusUnauthorized, "Refresh token cookie is required", nil)
	}

	user, pair, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		return ToAppError(err)
	}

	h.writeTokenResponse(w, http.StatusOK, user, pair)
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the refresh token and blacklists the current access token for its remaining lifetime
// @Tags         auth
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return common.NewAppError(http.StatusUnauthorized, "Refresh token cookie is required", nil)
	}

	if err := h.auth.Logout(r.Context(), cookie.Value, bearerToken(r)); err != nil {
		return ToAppError(err)
	}

	h.setRefreshCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Me godoc
// @Summary      Current user
// @Description  Returns the freshly loaded user row for the authenticated request
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.User
// @Failure      401 {object} common.AppError
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(user)
	return nil
}

// SendVerification godoc
// @Summary      Send a verification email
// @Description  Issues a one-time, 24h verification token for the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      202 {object} map[string]string
// @Failure      401 {object} common.AppError
// @Router       /auth/verify-email/send [post]
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	if err := h.verifier.SendVerification(user.ID); err != nil {
		return ToAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "verification email sent"})
	return nil
}

// VerifyEmail godoc
// @Summary      Verify an email address
// @Description  Consumes a verification token; each token works exactly once
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.VerifyEmailRequest true "Verification payload"
// @Success      200 {object} map[string]string
// @Failure      401 {object} common.AppError
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.VerifyEmailRequest
	if appErr := common.DecodeAndValidate(r, &req); appErr != nil {
		return appErr
	}

	if _, err := h.verifier.VerifyEmail(req.Token); err != nil {
		return ToAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"status": "email verified"})
	return nil
}
