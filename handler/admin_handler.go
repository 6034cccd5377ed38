// file: handler/admin_handler.go

package handler

import (
	"encoding/json"
	"net/http"

	"go-auth-api/common"
	"go-auth-api/model"

	"github.com/google/uuid"
)

// AccountAdmin is the account lifecycle surface admin endpoints consume.
// Implemented by service.AuthService.
type AccountAdmin interface {
	DisableUser(userID uuid.UUID) error
	EnableUser(userID uuid.UUID) error
}

// RoleAdmin is implemented by service.UserService.
type RoleAdmin interface {
	UpdateUserRole(userID uuid.UUID, newRole model.Role) error
}

// AdminHandler exposes account administration endpoints. All routes are
// mounted behind Authenticate and RequireAdmin.
type AdminHandler struct {
	accounts AccountAdmin
	roles    RoleAdmin
	limiter  ChatLimiter
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts AccountAdmin, roles RoleAdmin, limiter ChatLimiter) *AdminHandler {
	return &AdminHandler{accounts: accounts, roles: roles, limiter: limiter}
}

func pathUserID(r *http.Request) (uuid.UUID, *common.AppError) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, common.NewAppError(http.StatusBadRequest, "Invalid user id", nil)
	}
	return id, nil
}

// DisableUser godoc
// @Summary      Disable a user account
// @Description  Stamps the disabled marker and revokes every live refresh token
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204 "No Content"
// @Failure      404 {object} common.AppError
// @Router       /admin/users/{id}/disable [post]
func (h *AdminHandler) DisableUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}
	if err := h.accounts.DisableUser(id); err != nil {
		return ToAppError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// EnableUser godoc
// @Summary      Re-enable a user account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204 "No Content"
// @Failure      404 {object} common.AppError
// @Router       /admin/users/{id}/enable [post]
func (h *AdminHandler) EnableUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}
	if err := h.accounts.EnableUser(id); err != nil {
		return ToAppError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// UpdateUserRole godoc
// @Summary      Update a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body model.UpdateUserRoleRequest true "Role payload"
// @Success      204 "No Content"
// @Failure      400 {object} common.AppError
// @Router       /admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateUserRoleRequest
	if appErr := common.DecodeAndValidate(r, &req); appErr != nil {
		return appErr
	}

	if err := h.roles.UpdateUserRole(id, req.Role); err != nil {
		return ToAppError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ResetChatLimit godoc
// @Summary      Reset a user's chat rate limits
// @Description  Clears both the per-minute and daily counters immediately
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204 "No Content"
// @Router       /admin/users/{id}/rate-limit/reset [post]
func (h *AdminHandler) ResetChatLimit(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := pathUserID(r)
	if appErr != nil {
		return appErr
	}
	if err := h.limiter.ResetChat(r.Context(), id); err != nil {
		return ToAppError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// ResetLoginLimit godoc
// @Summary      Reset the login rate limit for an origin IP
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      204 "No Content"
// @Router       /admin/rate-limit/login/reset [post]
func (h *AdminHandler) ResetLoginLimit(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IP == "" {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.limiter.ResetLogin(r.Context(), req.IP); err != nil {
		return ToAppError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
