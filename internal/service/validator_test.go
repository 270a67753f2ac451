package service

import (
	"testing"

	"petshop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForCreatePasses(t *testing.T) {
	items := []models.SaleItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
	}
	snapshot := map[int64]int{1: 3, 2: 5}

	assert.NoError(t, ValidateForCreate(items, snapshot))
}

func TestValidateForCreateInsufficientStock(t *testing.T) {
	items := []models.SaleItem{{ProductID: 1, Quantity: 5}}
	snapshot := map[int64]int{1: 2}

	err := ValidateForCreate(items, snapshot)
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1), insufficient.ProductID)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
}

func TestValidateForCreateAggregatesRepeatedLines(t *testing.T) {
	// The same product split across two lines must be checked against
	// its combined quantity.
	items := []models.SaleItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 1, Quantity: 3},
	}
	snapshot := map[int64]int{1: 5}

	err := ValidateForCreate(items, snapshot)
	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 6, insufficient.Requested)
}

func TestValidateForCreateUnknownProduct(t *testing.T) {
	items := []models.SaleItem{{ProductID: 7, Quantity: 1}}

	err := ValidateForCreate(items, map[int64]int{})
	var unknown *models.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(7), unknown.ProductID)
}
