package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oms-api/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres-backed document store. Products, orders and
// users live in their own tables; order items, carts and order
// summaries are JSONB columns.
type Store struct {
	db   *sqlx.DB
	seed int64
}

// NewStore connects to the database. seed is the initial value of the
// order-id counter; the first allocated id is seed+1.
func NewStore(databaseURL string, seed int64) (*Store, error) {
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

	return &Store{db: db, seed: seed}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProduct retrieves a product by its public id
func (s *Store) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT product_id, name, price, stock FROM products WHERE product_id = $1", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves the whole catalog
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT product_id, name, price, stock FROM products ORDER BY product_id")
	return products, err
}

// DecrementStock subtracts qty from a product's stock. The subtraction
// is conditioned on current stock inside a single statement, so stock
// can never go negative and a rejected call changes nothing.
func (s *Store) DecrementStock(ctx context.Context, productID string, qty int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock - $2 WHERE product_id = $1 AND stock >= $2",
		productID, qty)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)", productID); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return fmt.Errorf("%w: %s", ErrInsufficientStock, productID)
}

// DecrementStockBatch applies a set of pre-validated decrements inside
// one transaction. Every statement keeps the conditional guard, and any
// late shortfall rolls the whole batch back.
func (s *Store) DecrementStockBatch(ctx context.Context, items []models.StockDeduction) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $2 WHERE product_id = $1 AND stock >= $2",
			item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, item.ProductID)
		}
	}

	return tx.Commit()
}
