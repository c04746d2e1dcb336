package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLot(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("generates a lot code when none given", func(t *testing.T) {
		receivedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		lot, err := NewLot(tenantID, productID, "", receivedAt, nil)

		require.NoError(t, err)
		assert.Contains(t, lot.LotCode, "LOT-20260314-")
		assert.Equal(t, LotStatusActive, lot.Status)
	})

	t.Run("uppercases an explicit lot code", func(t *testing.T) {
		lot, err := NewLot(tenantID, productID, "batch-7", time.Now(), nil)

		require.NoError(t, err)
		assert.Equal(t, "BATCH-7", lot.LotCode)
	})

	t.Run("fails with nil product", func(t *testing.T) {
		lot, err := NewLot(tenantID, uuid.Nil, "", time.Now(), nil)

		require.Error(t, err)
		assert.Nil(t, lot)
	})

	t.Run("fails when expiry precedes receipt", func(t *testing.T) {
		receivedAt := time.Now()
		expiry := receivedAt.Add(-time.Hour)
		lot, err := NewLot(tenantID, productID, "", receivedAt, &expiry)

		require.Error(t, err)
		assert.Nil(t, lot)
	})
}

func TestLot_TransitionTo(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("active to hold and back", func(t *testing.T) {
		lot, err := NewLot(tenantID, productID, "", time.Now(), nil)
		require.NoError(t, err)

		require.NoError(t, lot.TransitionTo(LotStatusHold))
		assert.Equal(t, LotStatusHold, lot.Status)
		require.NoError(t, lot.TransitionTo(LotStatusActive))
		assert.Equal(t, LotStatusActive, lot.Status)
	})

	t.Run("depleted is terminal", func(t *testing.T) {
		lot, err := NewLot(tenantID, productID, "", time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, lot.TransitionTo(LotStatusDepleted))

		err = lot.TransitionTo(LotStatusActive)

		require.Error(t, err)
		assert.Equal(t, LotStatusDepleted, lot.Status)
	})

	t.Run("expired is terminal", func(t *testing.T) {
		lot, err := NewLot(tenantID, productID, "", time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, lot.TransitionTo(LotStatusExpired))

		require.Error(t, lot.TransitionTo(LotStatusActive))
	})
}

func TestLot_IsUsable(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	lot, err := NewLot(tenantID, productID, "", time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, lot.IsUsable())

	require.NoError(t, lot.TransitionTo(LotStatusHold))
	assert.False(t, lot.IsUsable())
}
