package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra"
	"storefront-core/internal/pkg/clock"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/pkg/jwt"
	"storefront-core/internal/usecase/shared"
)

type RegisterInput struct {
	Email    string
	Password string
	// GuestToken carries the guest session to fold into the new account.
	GuestPrincipalID *uuid.UUID
}

type LoginInput struct {
	Email    string
	Password string
	// GuestPrincipalID triggers a cart merge after the credentials check.
	GuestPrincipalID *uuid.UUID
}

type AuthResult struct {
	PrincipalID uuid.UUID
	Token       string
	Role        user.Role
	IsGuest     bool
}

type AuthCommands interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	StartGuestSession(ctx context.Context) (*AuthResult, error)
}

type authCommandsImpl struct {
	uow   shared.UnitOfWork
	carts CartCommands
	jwt   *jwt.Manager
	clock clock.Clock
}

func NewAuthCommands(uow shared.UnitOfWork, carts CartCommands, jwtManager *jwt.Manager, clk clock.Clock) AuthCommands {
	return &authCommandsImpl{uow: uow, carts: carts, jwt: jwtManager, clock: clk}
}

func (a *authCommandsImpl) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := user.NewEmail(in.Email)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, errs.Mark(errs.New("password must be at least 8 characters"), ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(err, "hashing password")
	}

	principal := user.NewRegistered(email, string(hash), user.RoleCustomer)
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Principals().Create(ctx, principal)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, errs.Wrap(err, "creating principal")
	}

	if err := a.mergeGuest(ctx, in.GuestPrincipalID, principal.ID()); err != nil {
		return nil, err
	}
	return a.issue(principal)
}

func (a *authCommandsImpl) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	principal, err := a.uow.CommandReads().PrincipalByEmail(ctx, in.Email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Wrap(err, "loading principal")
	}
	if !principal.IsActive() {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash()), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Principals().UpdateLastLogin(ctx, principal.ID(), a.clock.Now())
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record last login", "principal_id", principal.ID(), "error", err)
	}

	if err := a.mergeGuest(ctx, in.GuestPrincipalID, principal.ID()); err != nil {
		return nil, err
	}
	return a.issue(principal)
}

// StartGuestSession creates a throwaway principal so anonymous visitors can
// build a cart before deciding to register.
func (a *authCommandsImpl) StartGuestSession(ctx context.Context) (*AuthResult, error) {
	sessionID := uuid.NewString()
	principal := user.NewGuest(sessionID)

	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Principals().Create(ctx, principal)
	})
	if err != nil {
		return nil, errs.Wrap(err, "creating guest principal")
	}
	return a.issue(principal)
}

// mergeGuest folds the guest cart into the account's. A conflict that
// survived the retry loop goes back to the caller so the client can retry
// the sign-in; any other failure just leaves the guest cart to the sweep.
func (a *authCommandsImpl) mergeGuest(ctx context.Context, guestID *uuid.UUID, userID uuid.UUID) error {
	if guestID == nil || *guestID == userID {
		return nil
	}
	err := a.carts.MergeGuestIntoUser(ctx, *guestID, userID)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMergeConflict) {
		return err
	}
	slog.WarnContext(ctx, "guest cart merge failed", "guest_id", *guestID, "user_id", userID, "error", err)
	return nil
}

func (a *authCommandsImpl) issue(p *user.Principal) (*AuthResult, error) {
	sessionID := ""
	if p.SessionID() != nil {
		sessionID = *p.SessionID()
	}
	token, err := a.jwt.Generate(p.ID(), p.Role().String(), p.IsGuest(), sessionID, a.clock.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		PrincipalID: p.ID(),
		Token:       token,
		Role:        p.Role(),
		IsGuest:     p.IsGuest(),
	}, nil
}
