package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/backend/internal/domain/shared"
)

func newDraftOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder(uuid.New(), uuid.New(), "Acme Packaging")
	require.NoError(t, err)
	return order
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates draft with generated order number", func(t *testing.T) {
		order := newDraftOrder(t)

		assert.Equal(t, PurchaseOrderStatusDraft, order.Status)
		assert.Regexp(t, `^PO-\d{8}-[0-9a-f]{8}$`, order.OrderNumber)
		assert.True(t, order.TotalAmount.IsZero())
		assert.Empty(t, order.Items)
	})

	t.Run("rejects nil vendor", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), uuid.Nil, "Acme")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_VENDOR", domainErr.Code)
	})
}

func TestPurchaseOrderItems(t *testing.T) {
	materialID := uuid.New()

	t.Run("add item computes amount and total", func(t *testing.T) {
		order := newDraftOrder(t)

		item, err := order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.RequireFromString("517"), decimal.RequireFromString("4"))
		require.NoError(t, err)

		assert.Equal(t, "2068", item.Amount.String())
		assert.Equal(t, "2068", order.TotalAmount.String())
	})

	t.Run("rejects duplicate material", func(t *testing.T) {
		order := newDraftOrder(t)
		_, err := order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(10), decimal.NewFromInt(4))
		require.NoError(t, err)

		_, err = order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(5), decimal.NewFromInt(4))
		require.Error(t, err)
	})

	t.Run("update quantity recalculates amounts", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(10), decimal.RequireFromString("2.5"))
		require.NoError(t, err)

		require.NoError(t, order.UpdateItemQuantity(item.ID, decimal.NewFromInt(20)))
		assert.Equal(t, "50", order.TotalAmount.String())
	})

	t.Run("remove item updates total", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(10), decimal.NewFromInt(4))
		require.NoError(t, err)
		_, err = order.AddItem(uuid.New(), "Glue", "RM-002", "l",
			decimal.NewFromInt(2), decimal.NewFromInt(7))
		require.NoError(t, err)

		require.NoError(t, order.RemoveItem(item.ID))
		assert.Len(t, order.Items, 1)
		assert.Equal(t, "14", order.TotalAmount.String())
	})

	t.Run("no edits after confirmation", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(materialID, "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(10), decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, order.Confirm())

		_, err = order.AddItem(uuid.New(), "Glue", "RM-002", "l",
			decimal.NewFromInt(2), decimal.NewFromInt(7))
		assert.Error(t, err)
		assert.Error(t, order.UpdateItemQuantity(item.ID, decimal.NewFromInt(5)))
		assert.Error(t, order.RemoveItem(item.ID))
	})
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	t.Run("cannot confirm empty order", func(t *testing.T) {
		order := newDraftOrder(t)
		err := order.Confirm()
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "EMPTY_ORDER", domainErr.Code)
	})

	t.Run("receipts drive status transitions", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(uuid.New(), "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(100), decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, order.Confirm())
		assert.True(t, order.IsOpen())

		require.NoError(t, order.RecordReceipt(item.ID, decimal.NewFromInt(40)))
		assert.Equal(t, PurchaseOrderStatusPartialReceived, order.Status)
		assert.True(t, order.IsOpen())

		require.NoError(t, order.RecordReceipt(item.ID, decimal.NewFromInt(60)))
		assert.Equal(t, PurchaseOrderStatusCompleted, order.Status)
		assert.False(t, order.IsOpen())
		require.NotNil(t, order.CompletedAt)
	})

	t.Run("over-receipt rejected", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(uuid.New(), "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(100), decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, order.Confirm())

		err = order.RecordReceipt(item.ID, decimal.NewFromInt(101))
		require.Error(t, err)
		assert.True(t, order.Items[0].ReceivedQuantity.IsZero())
	})

	t.Run("cancel only before receiving", func(t *testing.T) {
		order := newDraftOrder(t)
		item, err := order.AddItem(uuid.New(), "Kraft Board", "RM-001", "kg",
			decimal.NewFromInt(100), decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, order.Confirm())
		require.NoError(t, order.RecordReceipt(item.ID, decimal.NewFromInt(10)))

		assert.Error(t, order.Cancel("no longer needed"))
	})

	t.Run("cancel records reason and timestamp", func(t *testing.T) {
		order := newDraftOrder(t)
		require.NoError(t, order.Cancel("duplicate order"))

		assert.Equal(t, PurchaseOrderStatusCancelled, order.Status)
		assert.Equal(t, "duplicate order", order.CancelReason)
		require.NotNil(t, order.CancelledAt)
	})
}

func TestSetSourceSuggestion(t *testing.T) {
	order := newDraftOrder(t)
	suggestionID := uuid.New()

	order.SetSourceSuggestion(suggestionID)
	require.NotNil(t, order.SourceSuggestionID)
	assert.Equal(t, suggestionID, *order.SourceSuggestionID)

	order.SetSourceSuggestion(uuid.Nil)
	assert.Equal(t, suggestionID, *order.SourceSuggestionID)
}

func TestSetExpectedDelivery(t *testing.T) {
	order := newDraftOrder(t)
	date := time.Now().AddDate(0, 0, 14)
	require.NoError(t, order.SetExpectedDelivery(date))
	require.NotNil(t, order.ExpectedDeliveryDate)
	assert.WithinDuration(t, date, *order.ExpectedDeliveryDate, time.Second)
}
