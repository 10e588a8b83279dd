package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oms-api/internal/models"
)

// CreateOrder persists a new order with its item snapshot
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, user_id, items, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.OrderID, order.UserID, order.Items, order.TotalPrice,
		order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by its id
func (s *Store) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetAllOrders retrieves every order, newest first
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// GetOrdersByStatus retrieves orders in a given status, optionally
// bounded by a created_at range.
func (s *Store) GetOrdersByStatus(ctx context.Context, status models.Status, from, to *time.Time) ([]models.Order, error) {
	query := "SELECT * FROM orders WHERE status = $1"
	args := []interface{}{status}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// UpdateOrderStatus sets a new status and updated_at timestamp
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.Status, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1",
		orderID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return nil
}

// DeleteOrder removes an order record
func (s *Store) DeleteOrder(ctx context.Context, orderID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	return nil
}

// DeleteAllOrders removes every order and returns the number deleted
func (s *Store) DeleteAllOrders(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders")
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}
	return res.RowsAffected()
}
