package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stockpilot/backend/internal/domain/shared"
)

func newTestBalance(t *testing.T) *InventoryBalance {
	t.Helper()
	b, err := NewInventoryBalance(uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return b
}

func TestNewInventoryBalance(t *testing.T) {
	t.Run("creates empty balance", func(t *testing.T) {
		b := newTestBalance(t)

		assert.True(t, b.Available.IsZero())
		assert.True(t, b.Reserved.IsZero())
		assert.True(t, b.Hold.IsZero())
		assert.True(t, b.Damaged.IsZero())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("fails with nil lot ID", func(t *testing.T) {
		b, err := NewInventoryBalance(uuid.New(), uuid.Nil, uuid.New(), uuid.New())

		require.Error(t, err)
		assert.Nil(t, b)
	})

	t.Run("fails with nil warehouse ID", func(t *testing.T) {
		b, err := NewInventoryBalance(uuid.New(), uuid.New(), uuid.Nil, uuid.New())

		require.Error(t, err)
		assert.Nil(t, b)
	})
}

func TestInventoryBalance_Receive(t *testing.T) {
	t.Run("adds to available and total received", func(t *testing.T) {
		b := newTestBalance(t)

		err := b.Receive(decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.Equal(t, "100", b.Available.String())
		assert.Equal(t, "100", b.TotalReceived.String())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		b := newTestBalance(t)

		require.Error(t, b.Receive(decimal.Zero))
		require.Error(t, b.Receive(decimal.NewFromInt(-5)))
	})
}

func TestInventoryBalance_Reserve(t *testing.T) {
	t.Run("moves quantity from available to reserved", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(100)))

		res, err := b.Reserve(decimal.NewFromInt(30), "sales_order", "SO-1")

		require.NoError(t, err)
		assert.Equal(t, "70", b.Available.String())
		assert.Equal(t, "30", b.Reserved.String())
		assert.Equal(t, "30", res.Quantity.String())
		assert.Equal(t, "sales_order", res.ReferenceType)
		assert.True(t, res.IsActive())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("fails with insufficient stock and leaves balance unmodified", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(10)))

		res, err := b.Reserve(decimal.NewFromInt(11), "sales_order", "SO-1")

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Nil(t, res)
		assert.Equal(t, "10", b.Available.String())
		assert.True(t, b.Reserved.IsZero())
	})

	t.Run("requires a reference", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(10)))

		_, err := b.Reserve(decimal.NewFromInt(5), "", "")

		require.Error(t, err)
	})
}

func TestInventoryBalance_ReserveRelease_RoundTrip(t *testing.T) {
	b := newTestBalance(t)
	require.NoError(t, b.Receive(decimal.NewFromInt(100)))

	availableBefore := b.Available
	reservedBefore := b.Reserved

	_, err := b.Reserve(decimal.NewFromInt(25), "sales_order", "SO-9")
	require.NoError(t, err)
	require.NoError(t, b.Release(decimal.NewFromInt(25), "sales_order", "SO-9"))

	assert.True(t, b.Available.Equal(availableBefore))
	assert.True(t, b.Reserved.Equal(reservedBefore))
	require.NoError(t, b.CheckInvariant())
}

func TestInventoryBalance_ConsumeReserved(t *testing.T) {
	t.Run("moves reserved quantity out of inventory", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(100)))
		_, err := b.Reserve(decimal.NewFromInt(40), "work_order", "WO-1")
		require.NoError(t, err)

		require.NoError(t, b.ConsumeReserved(decimal.NewFromInt(40), "work_order", "WO-1"))

		assert.Equal(t, "60", b.Available.String())
		assert.True(t, b.Reserved.IsZero())
		assert.Equal(t, "40", b.TotalConsumed.String())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("fails when consumption exceeds reserved", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(100)))

		err := b.ConsumeReserved(decimal.NewFromInt(1), "work_order", "WO-1")

		require.Error(t, err)
	})
}

func TestInventoryBalance_HoldAndDamaged(t *testing.T) {
	b := newTestBalance(t)
	require.NoError(t, b.Receive(decimal.NewFromInt(50)))

	require.NoError(t, b.MoveToHold(decimal.NewFromInt(10)))
	require.NoError(t, b.MarkDamaged(decimal.NewFromInt(5)))

	assert.Equal(t, "35", b.Available.String())
	assert.Equal(t, "10", b.Hold.String())
	assert.Equal(t, "5", b.Damaged.String())
	require.NoError(t, b.CheckInvariant())

	require.NoError(t, b.ReleaseHold(decimal.NewFromInt(10)))
	assert.Equal(t, "45", b.Available.String())
	require.NoError(t, b.CheckInvariant())
}

func TestInventoryBalance_Adjust(t *testing.T) {
	t.Run("positive delta counts as receipt", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(10)))

		require.NoError(t, b.Adjust(decimal.NewFromFloat(2.5)))

		assert.Equal(t, "12.5", b.Available.String())
		assert.Equal(t, "12.5", b.TotalReceived.String())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("negative delta counts as consumption", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(10)))

		require.NoError(t, b.Adjust(decimal.NewFromInt(-4)))

		assert.Equal(t, "6", b.Available.String())
		assert.Equal(t, "4", b.TotalConsumed.String())
		require.NoError(t, b.CheckInvariant())
	})

	t.Run("cannot adjust below zero", func(t *testing.T) {
		b := newTestBalance(t)
		require.NoError(t, b.Receive(decimal.NewFromInt(3)))

		err := b.Adjust(decimal.NewFromInt(-4))

		require.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, "3", b.Available.String())
	})
}

func TestInventoryBalance_InvariantAcrossMixedOperations(t *testing.T) {
	b := newTestBalance(t)

	require.NoError(t, b.Receive(decimal.NewFromInt(200)))
	_, err := b.Reserve(decimal.NewFromInt(80), "sales_order", "SO-1")
	require.NoError(t, err)
	require.NoError(t, b.ConsumeReserved(decimal.NewFromInt(50), "sales_order", "SO-1"))
	require.NoError(t, b.Release(decimal.NewFromInt(30), "sales_order", "SO-1"))
	require.NoError(t, b.MoveToHold(decimal.NewFromInt(20)))
	require.NoError(t, b.MarkDamaged(decimal.NewFromInt(10)))
	require.NoError(t, b.Adjust(decimal.NewFromInt(-15)))

	require.NoError(t, b.CheckInvariant())
	assert.Equal(t, "135", b.OnHandQuantity().String()) // 200 - 50 - 15
}
