package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-core/internal/domain/cart"
	"storefront-core/internal/domain/discount"
	"storefront-core/internal/domain/order"
	"storefront-core/internal/domain/user"
	"storefront-core/internal/infra/db"
	"storefront-core/internal/infra/readstore"
	"storefront-core/internal/infra/repository"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	cartRepo      shared.CartRepository
	inventoryRepo shared.InventoryRepository
	orderRepo     shared.OrderRepository
	discountRepo  shared.DiscountRepository
	principalRepo shared.PrincipalRepository
	commandReads  shared.CommandReads
}

func (t *pgTx) Carts() shared.CartRepository {
	if t.cartRepo == nil {
		t.cartRepo = repository.NewCartRepository(t.dbtx)
	}
	return t.cartRepo
}

func (t *pgTx) Inventory() shared.InventoryRepository {
	if t.inventoryRepo == nil {
		t.inventoryRepo = repository.NewInventoryRepository(t.dbtx)
	}
	return t.inventoryRepo
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository(t.dbtx)
	}
	return t.orderRepo
}

func (t *pgTx) Discounts() shared.DiscountRepository {
	if t.discountRepo == nil {
		t.discountRepo = repository.NewDiscountRepository(t.dbtx)
	}
	return t.discountRepo
}

func (t *pgTx) Principals() shared.PrincipalRepository {
	if t.principalRepo == nil {
		t.principalRepo = repository.NewPrincipalRepository(t.dbtx)
	}
	return t.principalRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	principalStore *readstore.PrincipalReadStore
	catalogStore   *readstore.CatalogReadStore
	discountStore  *readstore.DiscountReadStore
	cartStore      *readstore.CartReadStore
	addressStore   *readstore.AddressReadStore
}

func (r *commandReads) principals() *readstore.PrincipalReadStore {
	if r.principalStore == nil {
		r.principalStore = readstore.NewPrincipalReadStore(r.dbtx)
	}
	return r.principalStore
}

func (r *commandReads) catalog() *readstore.CatalogReadStore {
	if r.catalogStore == nil {
		r.catalogStore = readstore.NewCatalogReadStore(r.dbtx)
	}
	return r.catalogStore
}

func (r *commandReads) PrincipalByID(ctx context.Context, id uuid.UUID) (*user.Principal, error) {
	return r.principals().FindByID(ctx, id)
}

func (r *commandReads) PrincipalByEmail(ctx context.Context, email string) (*user.Principal, error) {
	return r.principals().FindByEmail(ctx, email)
}

func (r *commandReads) PrincipalBySessionID(ctx context.Context, sessionID string) (*user.Principal, error) {
	return r.principals().FindBySessionID(ctx, sessionID)
}

func (r *commandReads) VariantByID(ctx context.Context, id uuid.UUID) (*shared.VariantSnapshot, error) {
	return r.catalog().VariantByID(ctx, id)
}

func (r *commandReads) VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]shared.VariantSnapshot, error) {
	return r.catalog().VariantsByIDs(ctx, ids)
}

func (r *commandReads) DiscountByCode(ctx context.Context, code string) (*discount.Code, error) {
	if r.discountStore == nil {
		r.discountStore = readstore.NewDiscountReadStore(r.dbtx)
	}
	return r.discountStore.FindByCode(ctx, code)
}

func (r *commandReads) CartByPrincipal(ctx context.Context, principalID uuid.UUID) (*cart.Cart, error) {
	if r.cartStore == nil {
		r.cartStore = readstore.NewCartReadStore(r.dbtx)
	}
	return r.cartStore.AggregateByPrincipal(ctx, principalID)
}

func (r *commandReads) AddressByID(ctx context.Context, principalID, addressID uuid.UUID) (*order.Address, error) {
	if r.addressStore == nil {
		r.addressStore = readstore.NewAddressReadStore(r.dbtx)
	}
	return r.addressStore.FindByID(ctx, principalID, addressID)
}
