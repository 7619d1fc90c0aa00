package user

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the acting identity behind every request. Registered
// principals are durable; guest principals live only as long as their
// session and are retired when merged into a registered account.
type Principal struct {
	id           uuid.UUID
	email        Email
	passwordHash string
	role         Role
	isGuest      bool
	sessionID    *string
	isActive     bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewRegistered(email Email, passwordHash string, role Role) *Principal {
	return &Principal{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isGuest:      false,
		isActive:     true,
	}
}

// Guests always act as customers; their session id is the only stable handle.
func NewGuest(sessionID string) *Principal {
	return &Principal{
		id:        uuid.New(),
		role:      RoleCustomer,
		isGuest:   true,
		sessionID: &sessionID,
		isActive:  true,
	}
}

func ReconstructPrincipal(
	id uuid.UUID,
	email Email,
	passwordHash string,
	role Role,
	isGuest bool,
	sessionID *string,
	isActive bool,
	lastLogin *time.Time,
	createdAt, updatedAt time.Time,
) *Principal {
	return &Principal{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isGuest:      isGuest,
		sessionID:    sessionID,
		isActive:     isActive,
		lastLogin:    lastLogin,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (p *Principal) ID() uuid.UUID         { return p.id }
func (p *Principal) Email() Email          { return p.email }
func (p *Principal) PasswordHash() string  { return p.passwordHash }
func (p *Principal) Role() Role            { return p.role }
func (p *Principal) IsGuest() bool         { return p.isGuest }
func (p *Principal) SessionID() *string    { return p.sessionID }
func (p *Principal) IsActive() bool        { return p.isActive }
func (p *Principal) LastLogin() *time.Time { return p.lastLogin }
func (p *Principal) CreatedAt() time.Time  { return p.createdAt }
func (p *Principal) UpdatedAt() time.Time  { return p.updatedAt }
