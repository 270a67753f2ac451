package service

import (
	"context"
	"errors"
	"testing"

	"petshop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStockDeltas(t *testing.T) {
	oldItems := []models.SaleItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}
	newItems := []models.SaleItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 3, Quantity: 2},
	}

	returns, removals := ComputeStockDeltas(oldItems, newItems)

	assert.Equal(t, []StockDelta{
		{ProductID: 1, Delta: 2},
		{ProductID: 2, Delta: 1},
	}, returns)
	assert.Equal(t, []StockDelta{
		{ProductID: 3, Delta: -2},
	}, removals)
}

func TestComputeStockDeltasUnchangedProductExcluded(t *testing.T) {
	oldItems := []models.SaleItem{{ProductID: 1, Quantity: 2}}
	newItems := []models.SaleItem{{ProductID: 1, Quantity: 2}}

	returns, removals := ComputeStockDeltas(oldItems, newItems)
	assert.Empty(t, returns)
	assert.Empty(t, removals)
}

func TestComputeStockDeltasCreateIsAllRemovals(t *testing.T) {
	newItems := []models.SaleItem{
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
	}

	returns, removals := ComputeStockDeltas(nil, newItems)
	assert.Empty(t, returns)
	assert.Equal(t, []StockDelta{
		{ProductID: 1, Delta: -3},
		{ProductID: 2, Delta: -1},
	}, removals)
}

func TestReconcilerAppliesReturnsBeforeRemovals(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Stock: 0},
		&models.Product{ID: 2, Stock: 4},
	)
	reconciler := NewReconciler(stock)

	oldItems := []models.SaleItem{{ProductID: 1, Quantity: 3}}
	newItems := []models.SaleItem{{ProductID: 2, Quantity: 4}}

	applied, err := reconciler.Apply(ctx, oldItems, newItems)
	require.NoError(t, err)

	require.Len(t, stock.ops, 2)
	assert.Equal(t, stockOp{kind: "inc", productID: 1, quantity: 3}, stock.ops[0])
	assert.Equal(t, stockOp{kind: "dec", productID: 2, quantity: 4}, stock.ops[1])

	assert.Equal(t, 3, stock.stock(1))
	assert.Equal(t, 0, stock.stock(2))
	assert.Equal(t, []models.StockAdjustmentData{
		{ProductID: 1, Delta: 3},
		{ProductID: 2, Delta: -4},
	}, applied)
}

func TestReconcilerRemovalFailureStopsAtFixedPoint(t *testing.T) {
	// A sale holding one unit of product 1, amended to also request 100
	// units of product 2 with only 5 on the shelf: product 1 has no
	// delta, product 2's removal fails, and neither counter moves.
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Stock: 0},
		&models.Product{ID: 2, Stock: 5},
	)
	reconciler := NewReconciler(stock)

	oldItems := []models.SaleItem{{ProductID: 1, Quantity: 1}}
	newItems := []models.SaleItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 100},
	}

	_, err := reconciler.Apply(ctx, oldItems, newItems)
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(2), insufficient.ProductID)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 100, insufficient.Requested)

	assert.Equal(t, 0, stock.stock(1))
	assert.Equal(t, 5, stock.stock(2))
}

func TestReconcilerCompensatesAppliedReturnsOnFailure(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Stock: 2},
		&models.Product{ID: 2, Stock: 1},
	)
	reconciler := NewReconciler(stock)

	oldItems := []models.SaleItem{{ProductID: 1, Quantity: 4}}
	newItems := []models.SaleItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 10},
	}

	_, err := reconciler.Apply(ctx, oldItems, newItems)
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(2), insufficient.ProductID)

	// The return of 3 units to product 1 was rolled back.
	assert.Equal(t, 2, stock.stock(1))
	assert.Equal(t, 1, stock.stock(2))
}

func TestReconcilerPartialWhenCompensationFails(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Stock: 0},
		&models.Product{ID: 2, Stock: 3},
	)
	// Taking back product 1's returned units fails mid-compensation.
	stock.failDecrement[1] = errors.New("connection reset")
	reconciler := NewReconciler(stock)

	oldItems := []models.SaleItem{{ProductID: 1, Quantity: 4}}
	newItems := []models.SaleItem{{ProductID: 2, Quantity: 10}}

	_, err := reconciler.Apply(ctx, oldItems, newItems)
	var partial *models.PartialReconciliationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, map[int64]int{1: 4}, partial.Applied)

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, partial.Cause, &insufficient)
	assert.Equal(t, int64(2), insufficient.ProductID)

	// The uncompensated return is still visible on the shelf.
	assert.Equal(t, 4, stock.stock(1))
	assert.Equal(t, 3, stock.stock(2))
}
