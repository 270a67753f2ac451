package store

import (
	"context"
	"database/sql"
	"fmt"

	"petshop-service/internal/models"
)

// CreateSale persists a new sale together with its line items in one
// transaction. The sale row and its items are never visible separately.
func (s *Store) CreateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales (customer_id, payment_method, total)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	if err := tx.GetContext(ctx, sale, query,
		sale.CustomerID, sale.PaymentMethod, sale.Total); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	for i := range items {
		items[i].SaleID = sale.ID
		if err := tx.GetContext(ctx, &items[i].ID,
			`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			items[i].SaleID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice); err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateSale replaces a sale's fields and its full line-item set in one
// transaction. Items are swapped wholesale, never patched row by row.
func (s *Store) UpdateSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE sales SET customer_id = $1, payment_method = $2, total = $3, updated_at = NOW() WHERE id = $4",
		sale.CustomerID, sale.PaymentMethod, sale.Total, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sale not found: %d", sale.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sale_items WHERE sale_id = $1", sale.ID); err != nil {
		return fmt.Errorf("failed to clear sale items: %w", err)
	}

	for i := range items {
		items[i].SaleID = sale.ID
		if err := tx.GetContext(ctx, &items[i].ID,
			`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			items[i].SaleID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice); err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	return tx.Commit()
}

// GetSaleByID retrieves a sale by ID
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, "SELECT * FROM sales WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sale not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSales retrieves all sales, newest first
func (s *Store) GetSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.SelectContext(ctx, &sales, "SELECT * FROM sales ORDER BY created_at DESC")
	return sales, err
}

// GetSaleItemsBySaleID retrieves the committed line items of a sale
func (s *Store) GetSaleItemsBySaleID(ctx context.Context, saleID int64) ([]models.SaleItem, error) {
	var items []models.SaleItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY id", saleID)
	return items, err
}

// DeleteSale removes a sale and its line items
func (s *Store) DeleteSale(ctx context.Context, saleID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sale_items WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("failed to delete sale items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sales WHERE id = $1", saleID); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	return tx.Commit()
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomers retrieves all customers ordered by name
func (s *Store) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.SelectContext(ctx, &customers, "SELECT * FROM customers ORDER BY name")
	return customers, err
}

// CreateCustomer creates a new customer
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, customer, query,
		customer.Name, customer.Email, customer.Phone)
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
