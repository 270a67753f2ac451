package service

import (
	"context"
	"fmt"

	"petshop-service/internal/models"
)

// Cart holds the working set of line items for a sale being drafted,
// either a new sale or an amendment of an existing one. It touches no
// stock counters; stock is only mutated at commit time.
type Cart struct {
	stock Stock
	items []models.SaleItem
}

// NewCart creates an empty cart resolving products through the given
// stock client
func NewCart(stock Stock) *Cart {
	return &Cart{stock: stock}
}

// AddItem appends a line item, capturing the product's current unit
// price as a snapshot. Later price changes do not affect the line.
func (c *Cart) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return &models.InvalidQuantityError{Quantity: quantity}
	}

	product, err := c.stock.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	c.items = append(c.items, models.SaleItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	})
	return nil
}

// AddItemPriced appends a line item carrying an already-captured unit
// price, used when amending a sale whose lines keep the price they were
// sold at. The product reference is still resolved.
func (c *Cart) AddItemPriced(ctx context.Context, productID int64, quantity int, unitPrice models.Cents) error {
	if quantity <= 0 {
		return &models.InvalidQuantityError{Quantity: quantity}
	}

	if _, err := c.stock.GetProduct(ctx, productID); err != nil {
		return err
	}

	c.items = append(c.items, models.SaleItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	return nil
}

// RemoveItem removes the line item at the given position
func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("no line item at position %d", index)
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

// Items returns a copy of the current line items
func (c *Cart) Items() []models.SaleItem {
	items := make([]models.SaleItem, len(c.items))
	copy(items, c.items)
	return items
}

// Total returns the sum of quantity times unit price over all current
// line items. It is recomputed from the items on every call and never
// stored separately.
func (c *Cart) Total() models.Cents {
	var total models.Cents
	for _, item := range c.items {
		total += item.UnitPrice * models.Cents(item.Quantity)
	}
	return total
}

// Empty reports whether the cart has no line items
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Len returns the number of line items
func (c *Cart) Len() int {
	return len(c.items)
}
