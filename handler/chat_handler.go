// file: handler/chat_handler.go

package handler

import (
	"encoding/json"
	"net/http"

	"go-auth-api/common"
	"go-auth-api/config"
	"go-auth-api/model"
)

// ChatHandler exposes the quota surface of the chat subsystem. The chat
// backend itself (LLM proxying) is an external collaborator mounted behind
// the ChatQuota middleware; this handler only reports counter state.
type ChatHandler struct {
	limiter ChatLimiter
	chatCfg config.ChatConfig
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(limiter ChatLimiter, chatCfg config.ChatConfig) *ChatHandler {
	return &ChatHandler{limiter: limiter, chatCfg: chatCfg}
}

// Usage godoc
// @Summary      Current chat usage
// @Description  Returns the per-minute and daily counters for the authenticated user without consuming quota
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.ChatUsageResponse
// @Failure      401 {object} common.AppError
// @Router       /chat/usage [get]
func (h *ChatHandler) Usage(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	minute, daily, err := h.limiter.ChatUsage(r.Context(), user.ID)
	if err != nil {
		return ToAppError(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(model.ChatUsageResponse{
		MinuteCount: minute,
		MinuteLimit: h.chatCfg.RateLimitPerMinute,
		DailyCount:  daily,
		DailyLimit:  h.chatCfg.DailyMessageQuota,
	})
	return nil
}
