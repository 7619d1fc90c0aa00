//go:build unit

package inventory_test

import (
	"testing"
	"time"

	"storefront-core/internal/domain/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lines := []inventory.ReservationLine{
		{VariantID: uuid.New(), Quantity: 2},
	}

	t.Run("starts held with the ttl applied", func(t *testing.T) {
		r, err := inventory.NewReservation(uuid.New(), lines, 15*time.Minute, now)

		require.NoError(t, err)
		assert.True(t, r.IsHeld())
		assert.Equal(t, now.Add(15*time.Minute), r.ExpiresAt())
		assert.Equal(t, now, r.CreatedAt())
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := inventory.NewReservation(uuid.New(), nil, 15*time.Minute, now)
		assert.ErrorIs(t, err, inventory.ErrNothingToReserve)
	})
}

func TestReservationHasExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lines := []inventory.ReservationLine{{VariantID: uuid.New(), Quantity: 1}}

	t.Run("held past the deadline", func(t *testing.T) {
		r, err := inventory.NewReservation(uuid.New(), lines, 15*time.Minute, now)
		require.NoError(t, err)

		assert.False(t, r.HasExpired(now.Add(14*time.Minute)))
		assert.False(t, r.HasExpired(now.Add(15*time.Minute)), "deadline itself is still valid")
		assert.True(t, r.HasExpired(now.Add(15*time.Minute+time.Second)))
	})

	t.Run("terminal reservations never report expired", func(t *testing.T) {
		r := inventory.ReconstructReservation(
			uuid.New(), uuid.New(), lines,
			inventory.StatusConsumed, now.Add(-time.Hour), now.Add(-2*time.Hour),
		)
		assert.False(t, r.HasExpired(now))
	})
}

func TestReservationStatusIsTerminal(t *testing.T) {
	assert.False(t, inventory.StatusHeld.IsTerminal())
	assert.True(t, inventory.StatusConsumed.IsTerminal())
	assert.True(t, inventory.StatusReleased.IsTerminal())
}
