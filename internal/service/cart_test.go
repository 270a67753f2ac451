package service

import (
	"context"
	"testing"

	"petshop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItemSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(&models.Product{ID: 1, Name: "Dog food 10kg", Price: 1500, Stock: 10})

	cart := NewCart(stock)
	require.NoError(t, cart.AddItem(ctx, 1, 2))
	assert.Equal(t, models.Cents(3000), cart.Total())

	// A later price change must not affect the captured line.
	stock.products[1].Price = 9900
	assert.Equal(t, models.Cents(3000), cart.Total())
}

func TestCartAddItemInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(&models.Product{ID: 1, Price: 1500, Stock: 10})
	cart := NewCart(stock)

	for _, qty := range []int{0, -3} {
		err := cart.AddItem(ctx, 1, qty)
		var invalidQty *models.InvalidQuantityError
		require.ErrorAs(t, err, &invalidQty)
		assert.Equal(t, qty, invalidQty.Quantity)
	}
	assert.True(t, cart.Empty())
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	ctx := context.Background()
	cart := NewCart(newFakeStock())

	err := cart.AddItem(ctx, 42, 1)
	var unknown *models.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(42), unknown.ProductID)
}

func TestCartRemoveItemRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Price: 1000, Stock: 10},
		&models.Product{ID: 2, Price: 500, Stock: 10},
	)

	cart := NewCart(stock)
	require.NoError(t, cart.AddItem(ctx, 1, 2))
	require.NoError(t, cart.AddItem(ctx, 2, 1))
	assert.Equal(t, models.Cents(2500), cart.Total())

	require.NoError(t, cart.RemoveItem(1))
	assert.Equal(t, models.Cents(2000), cart.Total())
	assert.Equal(t, 1, cart.Len())

	assert.Error(t, cart.RemoveItem(5))
	assert.Error(t, cart.RemoveItem(-1))
}

func TestCartRemoveReaddKeepsTotal(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(
		&models.Product{ID: 1, Price: 1000, Stock: 10},
		&models.Product{ID: 2, Price: 750, Stock: 10},
	)

	cart := NewCart(stock)
	require.NoError(t, cart.AddItem(ctx, 1, 3))
	require.NoError(t, cart.AddItem(ctx, 2, 2))
	before := cart.Total()

	require.NoError(t, cart.RemoveItem(1))
	require.NoError(t, cart.AddItem(ctx, 2, 2))

	assert.Equal(t, before, cart.Total())
}

func TestCartAddItemPricedKeepsGivenPrice(t *testing.T) {
	ctx := context.Background()
	stock := newFakeStock(&models.Product{ID: 1, Price: 2000, Stock: 10})

	cart := NewCart(stock)
	require.NoError(t, cart.AddItemPriced(ctx, 1, 2, 1750))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.Cents(1750), items[0].UnitPrice)
	assert.Equal(t, models.Cents(3500), cart.Total())
}
