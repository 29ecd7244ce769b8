package dto

import (
	"time"

	"retail-service/internal/service"
)

type LoginRequest struct {
	Login    string `json:"login" form:"login" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"user_id"`
	Login     string    `json:"login"`
	Role      string    `json:"role"`
	FullName  string    `json:"full_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func FromClaims(token string, c service.Claims) LoginResponse {
	return LoginResponse{
		Token:     token,
		UserID:    c.UserID.String(),
		Login:     c.Login,
		Role:      c.Role.DisplayName(),
		FullName:  c.FullName,
		ExpiresAt: c.ExpiresAt,
	}
}
