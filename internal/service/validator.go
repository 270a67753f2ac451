package service

import (
	"petshop-service/internal/models"
)

// quantityByProduct folds line items into a per-product quantity map.
// The same product may appear on several lines; the map carries the sum.
func quantityByProduct(items []models.SaleItem) map[int64]int {
	qty := make(map[int64]int, len(items))
	for _, item := range items {
		qty[item.ProductID] += item.Quantity
	}
	return qty
}

// ValidateForCreate checks a proposed line-item set against a stock
// snapshot taken at submission time. It fails on the first line item
// whose accumulated requested quantity exceeds the product's available
// stock, and never mutates stock. The snapshot is advisory: the commit
// itself re-checks through conditional decrements.
func ValidateForCreate(items []models.SaleItem, snapshot map[int64]int) error {
	requested := make(map[int64]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity

		available, known := snapshot[item.ProductID]
		if !known {
			return &models.UnknownProductError{ProductID: item.ProductID}
		}
		if requested[item.ProductID] > available {
			return &models.InsufficientStockError{
				ProductID: item.ProductID,
				Available: available,
				Requested: requested[item.ProductID],
			}
		}
	}
	return nil
}
