package service

import (
	"context"
	"errors"
	"fmt"

	"petshop-service/internal/models"
	"petshop-service/internal/redisclient"
	"petshop-service/internal/util"

	"go.uber.org/zap"
)

// Stock is the per-product stock surface the cart, validator,
// reconciler and orchestrator operate against.
type Stock interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	StockSnapshot(ctx context.Context, productIDs []int64) (map[int64]int, error)
	// DecrementStock takes quantity units if and only if that many are
	// available; otherwise it fails with InsufficientStockError.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}

// ProductStore is the database surface behind the stock client,
// satisfied by *store.Store.
type ProductStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}

// StockClient fronts the product stock counters. The database is
// authoritative; Redis mirrors the counters as a fast-reject path so a
// hopeless decrement never reaches Postgres. The client degrades to
// database-only when the cache is unavailable.
type StockClient struct {
	store             ProductStore
	cache             *redisclient.Client
	logger            *zap.Logger
	lowStockThreshold int
}

// NewStockClient creates a stock client. cache may be nil to run
// database-only. Decrements that leave a counter at or below
// lowStockThreshold are logged for the back office.
func NewStockClient(store ProductStore, cache *redisclient.Client, lowStockThreshold int) *StockClient {
	return &StockClient{
		store:             store,
		cache:             cache,
		logger:            util.GetLogger(),
		lowStockThreshold: lowStockThreshold,
	}
}

// GetProduct retrieves a product including its current stock counter
func (sc *StockClient) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	return sc.store.GetProductByID(ctx, productID)
}

// StockSnapshot reads the current stock counters for the given products
// in one round trip. Unknown products are simply absent from the map.
func (sc *StockClient) StockSnapshot(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	products, err := sc.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot stock: %w", err)
	}

	snapshot := make(map[int64]int, len(products))
	for _, p := range products {
		snapshot[p.ID] = p.Stock
	}
	return snapshot, nil
}

// DecrementStock takes quantity units from a product's stock. The cache
// is consulted first to reject hopeless requests cheaply; the database
// conditional update is the authority. A cache decrement is rolled back
// when the database rejects the write.
func (sc *StockClient) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "StockClient.DecrementStock")
	defer span.End()

	cacheTook := false
	if sc.cache != nil {
		ok, remaining, err := sc.cache.DecrementStock(ctx, productID, quantity)
		switch {
		case errors.Is(err, redisclient.ErrStockNotCached):
			// fall through to the database
		case err != nil:
			sc.logger.Warn("Cache decrement failed, falling back to DB",
				zap.Int64("product_id", productID),
				zap.Error(err))
		case !ok:
			return &models.InsufficientStockError{
				ProductID: productID,
				Available: remaining,
				Requested: quantity,
			}
		default:
			cacheTook = true
			if remaining <= sc.lowStockThreshold {
				sc.logger.Warn("Product stock running low",
					zap.Int64("product_id", productID),
					zap.Int("remaining", remaining))
			}
		}
	}

	if err := sc.store.DecrementStock(ctx, productID, quantity); err != nil {
		if cacheTook {
			if cerr := sc.cache.IncrementStock(ctx, productID, quantity); cerr != nil {
				sc.logger.Error("Failed to roll back cache decrement",
					zap.Int64("product_id", productID),
					zap.Error(cerr))
			}
		}
		return err
	}

	return nil
}

// IncrementStock returns quantity units to a product's stock, database
// first, cache best-effort.
func (sc *StockClient) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "StockClient.IncrementStock")
	defer span.End()

	if err := sc.store.IncrementStock(ctx, productID, quantity); err != nil {
		return err
	}

	if sc.cache != nil {
		if err := sc.cache.IncrementStock(ctx, productID, quantity); err != nil &&
			!errors.Is(err, redisclient.ErrStockNotCached) {
			sc.logger.Error("Failed to mirror stock return to cache",
				zap.Int64("product_id", productID),
				zap.Error(err))
		}
	}

	return nil
}

// SyncStockToCache seeds the cache with every product's current counter
func (sc *StockClient) SyncStockToCache(ctx context.Context) error {
	if sc.cache == nil {
		return nil
	}

	sc.logger.Info("Starting stock sync to cache")

	products, err := sc.store.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get products: %w", err)
	}

	for _, product := range products {
		if err := sc.cache.InitStock(ctx, product.ID, product.Stock); err != nil {
			sc.logger.Error("Failed to init cached stock counter",
				zap.Int64("product_id", product.ID),
				zap.Error(err))
		}
	}

	sc.logger.Info("Stock sync completed", zap.Int("count", len(products)))
	return nil
}
