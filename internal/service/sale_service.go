package service

import (
	"context"
	"fmt"
	"time"

	"petshop-service/internal/models"
	"petshop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleStore is the sale persistence surface, satisfied by *store.Store.
type SaleStore interface {
	CreateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error
	UpdateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetSales(ctx context.Context) ([]models.Sale, error)
	GetSaleItemsBySaleID(ctx context.Context, saleID int64) ([]models.SaleItem, error)
	DeleteSale(ctx context.Context, saleID int64) error
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
}

// EventPublisher publishes sale lifecycle events.
type EventPublisher interface {
	PublishSaleCommitted(ctx context.Context, event *models.SaleCommittedEvent) error
	PublishSaleAmended(ctx context.Context, event *models.SaleAmendedEvent) error
	PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error
}

// Locker serializes amendment sessions per sale. Optional.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// SaleService sequences validation, stock mutation and sale persistence
// for the create, amend and delete paths.
type SaleService struct {
	sales           SaleStore
	stock           Stock
	reconciler      *Reconciler
	publisher       EventPublisher
	locker          Locker
	logger          *zap.Logger
	restockOnDelete bool
}

// NewSaleService creates a sale service. publisher and locker may be nil.
func NewSaleService(sales SaleStore, stock Stock, publisher EventPublisher, locker Locker, restockOnDelete bool) *SaleService {
	return &SaleService{
		sales:           sales,
		stock:           stock,
		reconciler:      NewReconciler(stock),
		publisher:       publisher,
		locker:          locker,
		logger:          util.GetLogger(),
		restockOnDelete: restockOnDelete,
	}
}

// SaleItemRequest is one line item in a sale request. UnitPrice is only
// honored on amendments, where retained lines keep the price they were
// sold at, zero included; absent means snapshot the product's current
// price.
type SaleItemRequest struct {
	ProductID int64         `json:"product_id" binding:"required"`
	Quantity  int           `json:"quantity"`
	UnitPrice *models.Cents `json:"unit_price,omitempty"`
}

// CreateSaleRequest represents a request to commit a new sale
type CreateSaleRequest struct {
	CustomerID    int64             `json:"customer_id" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Items         []SaleItemRequest `json:"items"`
}

// AmendSaleRequest replaces an existing sale's line items wholesale.
// CustomerID and PaymentMethod are optional; zero values keep the
// committed ones.
type AmendSaleRequest struct {
	CustomerID    int64             `json:"customer_id"`
	PaymentMethod string            `json:"payment_method"`
	Items         []SaleItemRequest `json:"items"`
}

// buildCart drafts a cart from request items, validating quantities and
// product references and snapshotting prices.
func (s *SaleService) buildCart(ctx context.Context, items []SaleItemRequest, keepPrices bool) (*Cart, error) {
	cart := NewCart(s.stock)
	for _, item := range items {
		var err error
		if keepPrices && item.UnitPrice != nil {
			err = cart.AddItemPriced(ctx, item.ProductID, item.Quantity, *item.UnitPrice)
		} else {
			err = cart.AddItem(ctx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// CreateSale commits a new sale: empty-cart and payment-method checks,
// a stock validation against a snapshot fetched immediately before
// commit, then the stock decrements (atomic conditional, compensated as
// a group on failure) and finally the sale record. If persistence fails
// after stock was taken, the decrements are returned.
func (s *SaleService) CreateSale(ctx context.Context, req *CreateSaleRequest) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CreateSale")
	defer span.End()

	if len(req.Items) == 0 {
		util.SalesFailedTotal.WithLabelValues("empty_sale").Inc()
		return nil, models.ErrEmptySale
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		util.SalesFailedTotal.WithLabelValues("invalid_payment_method").Inc()
		return nil, fmt.Errorf("unsupported payment method: %q", req.PaymentMethod)
	}
	if _, err := s.sales.GetCustomerByID(ctx, req.CustomerID); err != nil {
		util.SalesFailedTotal.WithLabelValues("unknown_customer").Inc()
		return nil, err
	}

	cart, err := s.buildCart(ctx, req.Items, false)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}
	items := cart.Items()

	snapshot, err := s.stock.StockSnapshot(ctx, productIDs(items))
	if err != nil {
		return nil, err
	}
	if err := ValidateForCreate(items, snapshot); err != nil {
		util.SalesFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	// An empty prior state turns the whole cart into removals.
	applied, err := s.reconciler.Apply(ctx, nil, items)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("stock_mutation").Inc()
		return nil, err
	}

	sale := &models.Sale{
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		Total:         cart.Total(),
	}

	if err := s.sales.CreateSale(ctx, sale, items); err != nil {
		util.SalesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist sale: %w", s.reconciler.compensate(ctx, applied, err))
	}

	util.SalesCommittedTotal.Inc()
	s.logger.Info("Sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("customer_id", sale.CustomerID),
		zap.String("total", sale.Total.String()))

	s.publishCommitted(ctx, sale, items, applied)
	return sale, nil
}

// AmendSale replaces a committed sale's line items. The prior items are
// read from the sale store at the start of the commit and passed to the
// reconciler explicitly; no ambient edit-session state is kept. On
// reconciliation failure the sale record stays in its prior state.
func (s *SaleService) AmendSale(ctx context.Context, saleID int64, req *AmendSaleRequest) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.AmendSale")
	defer span.End()

	if s.locker != nil {
		key := fmt.Sprintf("sale:%d", saleID)
		ok, err := s.locker.AcquireLock(ctx, key, 30*time.Second)
		if err != nil {
			s.logger.Warn("Amendment lock unavailable", zap.Error(err))
		} else if !ok {
			return nil, fmt.Errorf("amendment already in progress for sale %d", saleID)
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(ctx, key); err != nil {
					s.logger.Warn("Failed to release amendment lock", zap.Error(err))
				}
			}()
		}
	}

	if len(req.Items) == 0 {
		util.SalesFailedTotal.WithLabelValues("empty_sale").Inc()
		return nil, models.ErrEmptySale
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		util.SalesFailedTotal.WithLabelValues("invalid_payment_method").Inc()
		return nil, fmt.Errorf("unsupported payment method: %q", req.PaymentMethod)
	}

	sale, err := s.sales.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	oldItems, err := s.sales.GetSaleItemsBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to read committed line items: %w", err)
	}

	cart, err := s.buildCart(ctx, req.Items, true)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}
	newItems := cart.Items()

	applied, err := s.reconciler.Apply(ctx, oldItems, newItems)
	if err != nil {
		util.SalesFailedTotal.WithLabelValues("reconciliation").Inc()
		return nil, err
	}

	if req.CustomerID > 0 {
		sale.CustomerID = req.CustomerID
	}
	if req.PaymentMethod != "" {
		sale.PaymentMethod = req.PaymentMethod
	}
	sale.Total = cart.Total()

	if err := s.sales.UpdateSale(ctx, sale, newItems); err != nil {
		util.SalesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist amended sale: %w", s.reconciler.compensate(ctx, applied, err))
	}

	util.SalesAmendedTotal.Inc()
	s.logger.Info("Sale amended",
		zap.Int64("sale_id", sale.ID),
		zap.Int("adjustments", len(applied)),
		zap.String("total", sale.Total.String()))

	s.publishAmended(ctx, sale, newItems, applied)
	return sale, nil
}

// DeleteSale removes a sale record. By default the line items'
// quantities are NOT returned to stock: committed sales are financial
// records and deleting one does not undo its effect on the shelf. With
// restock-on-delete enabled, deletion first runs the reconciler toward
// an empty item set, returning every unit.
func (s *SaleService) DeleteSale(ctx context.Context, saleID int64) error {
	ctx, span := util.StartSpan(ctx, "SaleService.DeleteSale")
	defer span.End()

	sale, err := s.sales.GetSaleByID(ctx, saleID)
	if err != nil {
		return err
	}
	items, err := s.sales.GetSaleItemsBySaleID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("failed to read committed line items: %w", err)
	}

	var applied []models.StockAdjustmentData
	if s.restockOnDelete {
		applied, err = s.reconciler.Apply(ctx, items, nil)
		if err != nil {
			return fmt.Errorf("failed to restock deleted sale: %w", err)
		}
	}

	if err := s.sales.DeleteSale(ctx, saleID); err != nil {
		if s.restockOnDelete {
			return fmt.Errorf("failed to delete sale: %w", s.reconciler.compensate(ctx, applied, err))
		}
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	util.SalesDeletedTotal.Inc()
	s.logger.Info("Sale deleted",
		zap.Int64("sale_id", sale.ID),
		zap.Bool("restocked", s.restockOnDelete))

	s.publishDeleted(ctx, sale.ID, applied)
	return nil
}

// GetSale retrieves a sale and its line items
func (s *SaleService) GetSale(ctx context.Context, saleID int64) (*models.Sale, []models.SaleItem, error) {
	sale, err := s.sales.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.sales.GetSaleItemsBySaleID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	return sale, items, nil
}

// ListSales retrieves all sales, newest first
func (s *SaleService) ListSales(ctx context.Context) ([]models.Sale, error) {
	return s.sales.GetSales(ctx)
}

func productIDs(items []models.SaleItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func itemData(items []models.SaleItem) []models.SaleItemData {
	data := make([]models.SaleItemData, 0, len(items))
	for _, item := range items {
		data = append(data, models.SaleItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return data
}

func (s *SaleService) publishCommitted(ctx context.Context, sale *models.Sale, items []models.SaleItem, adjustments []models.StockAdjustmentData) {
	if s.publisher == nil {
		return
	}

	event := &models.SaleCommittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCommitted,
			Timestamp: time.Now(),
		},
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		Total:       sale.Total,
		Items:       itemData(items),
		Adjustments: adjustments,
	}

	if err := s.publisher.PublishSaleCommitted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCommitted event", zap.Error(err))
	}
}

func (s *SaleService) publishAmended(ctx context.Context, sale *models.Sale, items []models.SaleItem, adjustments []models.StockAdjustmentData) {
	if s.publisher == nil {
		return
	}

	event := &models.SaleAmendedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleAmended,
			Timestamp: time.Now(),
		},
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		Total:       sale.Total,
		Items:       itemData(items),
		Adjustments: adjustments,
	}

	if err := s.publisher.PublishSaleAmended(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleAmended event", zap.Error(err))
	}
}

func (s *SaleService) publishDeleted(ctx context.Context, saleID int64, adjustments []models.StockAdjustmentData) {
	if s.publisher == nil {
		return
	}

	event := &models.SaleDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleDeleted,
			Timestamp: time.Now(),
		},
		SaleID:      saleID,
		Restocked:   s.restockOnDelete,
		Adjustments: adjustments,
	}

	if err := s.publisher.PublishSaleDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleDeleted event", zap.Error(err))
	}
}
