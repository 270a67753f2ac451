package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petshop-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.UnknownProductError{ProductID: id}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name")
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, category, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.Category, product.Price, product.Stock)
}

// UpdateProduct replaces a product's editable fields, including a direct
// stock correction from the back office
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = $1, category = $2, price = $3, stock = $4, updated_at = NOW() WHERE id = $5",
		product.Name, product.Category, product.Price, product.Stock, product.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &models.UnknownProductError{ProductID: product.ID}
	}
	return nil
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

// DecrementStock takes quantity units from a product's stock as a single
// conditional update: the write only lands when stock >= quantity, so the
// counter can never go negative and two concurrent commits cannot both
// spend the same units.
func (s *Store) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var available int
	err = s.db.GetContext(ctx, &available, "SELECT stock FROM products WHERE id = $1", productID)
	if err == sql.ErrNoRows {
		return &models.UnknownProductError{ProductID: productID}
	}
	if err != nil {
		return fmt.Errorf("failed to read stock after rejected decrement: %w", err)
	}

	return &models.InsufficientStockError{
		ProductID: productID,
		Available: available,
		Requested: quantity,
	}
}

// IncrementStock returns quantity units to a product's stock
func (s *Store) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
		quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &models.UnknownProductError{ProductID: productID}
	}
	return nil
}

// RecordStockMovement appends one audit-trail row for a stock mutation
func (s *Store) RecordStockMovement(ctx context.Context, movement *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, sale_id, delta, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, movement, query,
		movement.ProductID, movement.SaleID, movement.Delta, movement.Reason)
}

// GetStockMovements retrieves the movement history for a product, newest first
func (s *Store) GetStockMovements(ctx context.Context, productID int64) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.SelectContext(ctx, &movements,
		"SELECT * FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC", productID)
	return movements, err
}
