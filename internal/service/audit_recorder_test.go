package service

import (
	"context"
	"testing"

	"petshop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditStore struct {
	movements []models.StockMovement
	processed map[string]bool
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{processed: make(map[string]bool)}
}

func (f *fakeAuditStore) RecordStockMovement(ctx context.Context, movement *models.StockMovement) error {
	f.movements = append(f.movements, *movement)
	return nil
}

func (f *fakeAuditStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	return f.processed[eventID], nil
}

func (f *fakeAuditStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	f.processed[eventID] = true
	return nil
}

func TestAuditRecorderRecordsMovements(t *testing.T) {
	ctx := context.Background()
	store := newFakeAuditStore()
	recorder := NewAuditRecorder(store)

	event := &models.SaleCommittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeSaleCommitted,
		},
		SaleID: 7,
		Adjustments: []models.StockAdjustmentData{
			{ProductID: 1, Delta: -3},
			{ProductID: 2, Delta: -1},
		},
	}

	require.NoError(t, recorder.HandleSaleCommitted(ctx, event))

	require.Len(t, store.movements, 2)
	assert.Equal(t, int64(7), store.movements[0].SaleID)
	assert.Equal(t, -3, store.movements[0].Delta)
	assert.Equal(t, models.MovementReasonSale, store.movements[0].Reason)
	assert.True(t, store.processed["evt-1"])
}

func TestAuditRecorderSkipsProcessedEvent(t *testing.T) {
	ctx := context.Background()
	store := newFakeAuditStore()
	store.processed["evt-1"] = true
	recorder := NewAuditRecorder(store)

	event := &models.SaleAmendedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeSaleAmended,
		},
		SaleID:      7,
		Adjustments: []models.StockAdjustmentData{{ProductID: 1, Delta: 2}},
	}

	require.NoError(t, recorder.HandleSaleAmended(ctx, event))
	assert.Empty(t, store.movements)
}

func TestAuditRecorderDeleteWithoutRestock(t *testing.T) {
	ctx := context.Background()
	store := newFakeAuditStore()
	recorder := NewAuditRecorder(store)

	event := &models.SaleDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypeSaleDeleted,
		},
		SaleID:    7,
		Restocked: false,
	}

	require.NoError(t, recorder.HandleSaleDeleted(ctx, event))
	assert.Empty(t, store.movements)
	assert.True(t, store.processed["evt-2"])
}
