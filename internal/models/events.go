package models

import "time"

// Event types
const (
	EventTypeSaleCommitted = "SALE_COMMITTED"
	EventTypeSaleAmended   = "SALE_AMENDED"
	EventTypeSaleDeleted   = "SALE_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleItemData represents line-item data in events
type SaleItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice Cents `json:"unit_price"`
}

// StockAdjustmentData is one per-product stock delta carried by an event.
// Delta is the change applied to the stock counter: negative for units
// taken by the sale, positive for units returned to the shelf.
type StockAdjustmentData struct {
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
}

// SaleCommittedEvent published when a new sale is committed
type SaleCommittedEvent struct {
	BaseEvent
	SaleID      int64                 `json:"sale_id"`
	CustomerID  int64                 `json:"customer_id"`
	Total       Cents                 `json:"total"`
	Items       []SaleItemData        `json:"items"`
	Adjustments []StockAdjustmentData `json:"adjustments"`
}

// SaleAmendedEvent published when an existing sale's line items are
// replaced and stock was reconciled
type SaleAmendedEvent struct {
	BaseEvent
	SaleID      int64                 `json:"sale_id"`
	CustomerID  int64                 `json:"customer_id"`
	Total       Cents                 `json:"total"`
	Items       []SaleItemData        `json:"items"`
	Adjustments []StockAdjustmentData `json:"adjustments"`
}

// SaleDeletedEvent published when a sale record is removed
type SaleDeletedEvent struct {
	BaseEvent
	SaleID      int64                 `json:"sale_id"`
	Restocked   bool                  `json:"restocked"`
	Adjustments []StockAdjustmentData `json:"adjustments,omitempty"`
}
