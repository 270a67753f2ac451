package service

import (
	"context"
	"fmt"

	"petshop-service/internal/models"
	"petshop-service/internal/util"

	"go.uber.org/zap"
)

// AuditStore is the persistence surface the audit recorder needs,
// satisfied by *store.Store.
type AuditStore interface {
	RecordStockMovement(ctx context.Context, movement *models.StockMovement) error
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// AuditRecorder consumes sale lifecycle events and appends one stock
// movement row per applied adjustment. The resulting ledger lets an
// operator verify conservation: for any product, current stock plus the
// sum of recorded deltas equals the stock level before any sale.
type AuditRecorder struct {
	store  AuditStore
	logger *zap.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(store AuditStore) *AuditRecorder {
	return &AuditRecorder{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandleSaleCommitted records the stock taken by a new sale
func (ar *AuditRecorder) HandleSaleCommitted(ctx context.Context, event *models.SaleCommittedEvent) error {
	ctx, span := util.StartSpan(ctx, "AuditRecorder.HandleSaleCommitted")
	defer span.End()

	return ar.record(ctx, event.BaseEvent, event.SaleID, event.Adjustments, models.MovementReasonSale)
}

// HandleSaleAmended records the net stock change of an amendment
func (ar *AuditRecorder) HandleSaleAmended(ctx context.Context, event *models.SaleAmendedEvent) error {
	ctx, span := util.StartSpan(ctx, "AuditRecorder.HandleSaleAmended")
	defer span.End()

	return ar.record(ctx, event.BaseEvent, event.SaleID, event.Adjustments, models.MovementReasonAmendment)
}

// HandleSaleDeleted records the restock of a deleted sale, if any
func (ar *AuditRecorder) HandleSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	ctx, span := util.StartSpan(ctx, "AuditRecorder.HandleSaleDeleted")
	defer span.End()

	if !event.Restocked {
		// Deletion without restock has no stock effect to record.
		return ar.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
	}

	return ar.record(ctx, event.BaseEvent, event.SaleID, event.Adjustments, models.MovementReasonRestock)
}

func (ar *AuditRecorder) record(ctx context.Context, base models.BaseEvent, saleID int64, adjustments []models.StockAdjustmentData, reason string) error {
	processed, err := ar.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ar.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	for _, adj := range adjustments {
		movement := &models.StockMovement{
			ProductID: adj.ProductID,
			SaleID:    saleID,
			Delta:     adj.Delta,
			Reason:    reason,
		}
		if err := ar.store.RecordStockMovement(ctx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
	}

	if err := ar.store.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		ar.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	ar.logger.Info("Stock movements recorded",
		zap.Int64("sale_id", saleID),
		zap.String("reason", reason),
		zap.Int("count", len(adjustments)))
	return nil
}
