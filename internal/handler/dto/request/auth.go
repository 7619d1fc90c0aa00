package request

import (
	"strings"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r RegisterRequest) NormalizedEmail() string {
	return strings.TrimSpace(strings.ToLower(r.Email))
}

func (r LoginRequest) NormalizedEmail() string {
	return strings.TrimSpace(strings.ToLower(r.Email))
}
