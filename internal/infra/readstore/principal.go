package readstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/infra/db"
)

type PrincipalReadStore struct {
	db db.DBTX
}

func NewPrincipalReadStore(dbtx db.DBTX) *PrincipalReadStore {
	return &PrincipalReadStore{db: dbtx}
}

const principalColumns = `
	id, email, password_hash, role, is_guest, session_id, is_active, last_login, created_at, updated_at`

func (s *PrincipalReadStore) FindByID(ctx context.Context, id uuid.UUID) (*user.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals WHERE id = $1`
	return scanPrincipal(s.db.QueryRow(ctx, query, id))
}

func (s *PrincipalReadStore) FindByEmail(ctx context.Context, email string) (*user.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals WHERE lower(email) = lower($1)`
	return scanPrincipal(s.db.QueryRow(ctx, query, email))
}

func (s *PrincipalReadStore) FindBySessionID(ctx context.Context, sessionID string) (*user.Principal, error) {
	query := `SELECT` + principalColumns + ` FROM principals WHERE session_id = $1`
	return scanPrincipal(s.db.QueryRow(ctx, query, sessionID))
}

func scanPrincipal(row pgx.Row) (*user.Principal, error) {
	var (
		id           uuid.UUID
		email        *string
		passwordHash string
		role         string
		isGuest      bool
		sessionID    *string
		isActive     bool
		lastLogin    *time.Time
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(&id, &email, &passwordHash, &role, &isGuest, &sessionID,
		&isActive, &lastLogin, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("principal not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan principal", err)
	}

	var emailVO user.Email
	if email != nil {
		emailVO, err = user.NewEmail(*email)
		if err != nil {
			return nil, infra.WrapRepoErr("stored email is invalid", err)
		}
	}
	return user.ReconstructPrincipal(
		id, emailVO, passwordHash, user.Role(role),
		isGuest, sessionID, isActive, lastLogin, createdAt, updatedAt), nil
}
