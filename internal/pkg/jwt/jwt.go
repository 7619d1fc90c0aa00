package jwt

import (
	"errors"
	"time"

	golangjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront-core/internal/pkg/errs"
)

var (
	ErrInvalidToken = errs.New("invalid token")
	ErrExpiredToken = errs.New("expired token")
)

type Claims struct {
	PrincipalID uuid.UUID `json:"principal_id"`
	Role        string    `json:"role"`
	IsGuest     bool      `json:"is_guest"`
	SessionID   string    `json:"session_id,omitempty"`
	golangjwt.RegisteredClaims
}

type Manager struct {
	secret        []byte
	duration      time.Duration
	guestDuration time.Duration
}

func NewManager(secret string, duration, guestDuration time.Duration) *Manager {
	return &Manager{
		secret:        []byte(secret),
		duration:      duration,
		guestDuration: guestDuration,
	}
}

func (m *Manager) Generate(principalID uuid.UUID, role string, isGuest bool, sessionID string, now time.Time) (string, error) {
	ttl := m.duration
	if isGuest {
		ttl = m.guestDuration
	}
	claims := Claims{
		PrincipalID: principalID,
		Role:        role,
		IsGuest:     isGuest,
		SessionID:   sessionID,
		RegisteredClaims: golangjwt.RegisteredClaims{
			Subject:   principalID.String(),
			IssuedAt:  golangjwt.NewNumericDate(now),
			ExpiresAt: golangjwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := golangjwt.NewWithClaims(golangjwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errs.Wrap(err, "signing token")
	}
	return signed, nil
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := golangjwt.ParseWithClaims(tokenString, &Claims{}, func(t *golangjwt.Token) (any, error) {
		if _, ok := t.Method.(*golangjwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, golangjwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errs.Mark(err, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
