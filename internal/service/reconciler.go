package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"petshop-service/internal/models"
	"petshop-service/internal/util"

	"go.uber.org/zap"
)

// StockDelta is one per-product stock mutation produced by comparing a
// sale's committed line items against its amended ones. Delta is the
// change to apply to the stock counter: positive returns units to the
// shelf, negative takes more units.
type StockDelta struct {
	ProductID int64
	Delta     int
}

// ComputeStockDeltas compares the line items a sale had when the edit
// session opened against its new line items and produces the minimal
// per-product stock mutations. Returns (quantity dropped, stock goes up)
// come first; removals (quantity added, stock goes down) second. Within
// each phase deltas are ordered by product ID so a pass is deterministic.
func ComputeStockDeltas(oldItems, newItems []models.SaleItem) (returns, removals []StockDelta) {
	oldQty := quantityByProduct(oldItems)
	newQty := quantityByProduct(newItems)

	union := make(map[int64]struct{}, len(oldQty)+len(newQty))
	for id := range oldQty {
		union[id] = struct{}{}
	}
	for id := range newQty {
		union[id] = struct{}{}
	}

	for id := range union {
		diff := newQty[id] - oldQty[id]
		switch {
		case diff < 0:
			returns = append(returns, StockDelta{ProductID: id, Delta: -diff})
		case diff > 0:
			removals = append(removals, StockDelta{ProductID: id, Delta: -diff})
		}
	}

	sort.Slice(returns, func(i, j int) bool { return returns[i].ProductID < returns[j].ProductID })
	sort.Slice(removals, func(i, j int) bool { return removals[i].ProductID < removals[j].ProductID })
	return returns, removals
}

// Reconciler applies the stock mutations needed to move a sale from its
// committed line items to an amended set.
type Reconciler struct {
	stock  Stock
	logger *zap.Logger
}

// NewReconciler creates a reconciler over the given stock client
func NewReconciler(stock Stock) *Reconciler {
	return &Reconciler{
		stock:  stock,
		logger: util.GetLogger(),
	}
}

// Apply computes the deltas between oldItems and newItems and applies
// them: all returns first, so headroom is restored before any further
// stock is taken, then all removals, each as an atomic conditional
// decrement. When a removal fails, mutations already applied in this
// pass are compensated; if compensation itself cannot complete, the
// stock left in an intermediate state is surfaced as a
// PartialReconciliationError carrying the uncompensated deltas.
//
// On success the returned adjustments list every stock change applied,
// for the audit trail.
func (r *Reconciler) Apply(ctx context.Context, oldItems, newItems []models.SaleItem) ([]models.StockAdjustmentData, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Apply")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ReconciliationLatency.Observe(time.Since(start).Seconds())
	}()

	returns, removals := ComputeStockDeltas(oldItems, newItems)

	applied := make([]models.StockAdjustmentData, 0, len(returns)+len(removals))

	for _, d := range returns {
		if err := r.stock.IncrementStock(ctx, d.ProductID, d.Delta); err != nil {
			return nil, r.compensate(ctx, applied, err)
		}
		util.StockReturnsTotal.Inc()
		applied = append(applied, models.StockAdjustmentData{ProductID: d.ProductID, Delta: d.Delta})
	}

	for _, d := range removals {
		if err := r.stock.DecrementStock(ctx, d.ProductID, -d.Delta); err != nil {
			var insufficient *models.InsufficientStockError
			if errors.As(err, &insufficient) {
				util.StockDecrementsFailed.WithLabelValues("insufficient_stock").Inc()
			} else {
				util.StockDecrementsFailed.WithLabelValues("error").Inc()
			}
			return nil, r.compensate(ctx, applied, err)
		}
		util.StockDecrementsTotal.Inc()
		applied = append(applied, models.StockAdjustmentData{ProductID: d.ProductID, Delta: d.Delta})
	}

	return applied, nil
}

// compensate undoes the stock mutations applied so far in a failed pass,
// newest first. Any delta that cannot be undone is reported inside a
// PartialReconciliationError wrapping the original failure.
func (r *Reconciler) compensate(ctx context.Context, applied []models.StockAdjustmentData, cause error) error {
	if len(applied) == 0 {
		return cause
	}

	remaining := make(map[int64]int)

	for i := len(applied) - 1; i >= 0; i-- {
		adj := applied[i]

		var err error
		if adj.Delta > 0 {
			// A return is taken back; stock added moments ago may
			// already have been spent by a concurrent sale.
			err = r.stock.DecrementStock(ctx, adj.ProductID, adj.Delta)
		} else {
			err = r.stock.IncrementStock(ctx, adj.ProductID, -adj.Delta)
		}

		if err != nil {
			r.logger.Error("Failed to compensate stock mutation",
				zap.Int64("product_id", adj.ProductID),
				zap.Int("delta", adj.Delta),
				zap.Error(err))
			remaining[adj.ProductID] += adj.Delta
		}
	}

	if len(remaining) > 0 {
		util.ReconciliationCompensations.WithLabelValues("partial").Inc()
		return &models.PartialReconciliationError{Applied: remaining, Cause: cause}
	}

	util.ReconciliationCompensations.WithLabelValues("complete").Inc()
	return cause
}
