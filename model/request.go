// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRoleRequest defines the payload for updating a user's role.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin user"`
}

// VerifyEmailRequest carries the out-of-band verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,len=64,hexadecimal"`
}

// TokenPairResponse is returned by register, login and refresh. The refresh
// token itself travels in an HttpOnly cookie, never in the body.
type TokenPairResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user,omitempty"`
}

// ChatUsageResponse reports current rate/quota counter values for a user.
type ChatUsageResponse struct {
	MinuteCount int64 `json:"minute_count"`
	MinuteLimit int64 `json:"minute_limit"`
	DailyCount  int64 `json:"daily_count"`
	DailyLimit  int64 `json:"daily_limit"`
}
