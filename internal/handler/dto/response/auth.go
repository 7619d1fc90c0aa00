package response

import (
	"time"

	"github.com/google/uuid"

	"storefront-core/internal/usecase/commands"
	"storefront-core/internal/usecase/queries"
)

type AuthResponse struct {
	PrincipalID uuid.UUID `json:"principal_id"`
	AccessToken string    `json:"access_token"`
	Role        string    `json:"role"`
	IsGuest     bool      `json:"is_guest"`
}

type PrincipalResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role"`
	IsGuest   bool       `json:"is_guest"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromAuthResult(r *commands.AuthResult) AuthResponse {
	return AuthResponse{
		PrincipalID: r.PrincipalID,
		AccessToken: r.Token,
		Role:        r.Role.String(),
		IsGuest:     r.IsGuest,
	}
}

func FromPrincipalView(v *queries.PrincipalView) PrincipalResponse {
	return PrincipalResponse{
		ID:        v.ID,
		Email:     v.Email,
		Role:      v.Role,
		IsGuest:   v.IsGuest,
		LastLogin: v.LastLogin,
		CreatedAt: v.CreatedAt,
	}
}
