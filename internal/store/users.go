package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"oms-api/internal/models"
)

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateCart replaces a user's cart
func (s *Store) UpdateCart(ctx context.Context, userID string, cart models.LineItems) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET cart = $2 WHERE user_id = $1", userID, cart)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

// AppendOrderSummary pushes an {order_id, total_price} entry onto the
// user's summary list.
func (s *Store) AppendOrderSummary(ctx context.Context, userID string, summary models.OrderSummary) error {
	entry, err := json.Marshal([]models.OrderSummary{summary})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET orders = orders || $2::jsonb WHERE user_id = $1",
		userID, string(entry))
	if err != nil {
		return fmt.Errorf("failed to append order summary: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

// RemoveOrderSummary pulls the summary entry for orderID from whichever
// user holds it.
func (s *Store) RemoveOrderSummary(ctx context.Context, orderID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET orders = COALESCE(
			(SELECT jsonb_agg(entry)
			 FROM jsonb_array_elements(orders) entry
			 WHERE (entry->>'order_id')::bigint <> $1),
			'[]'::jsonb)
		WHERE orders @> jsonb_build_array(jsonb_build_object('order_id', $1::bigint))`,
		orderID)
	if err != nil {
		return fmt.Errorf("failed to remove order summary: %w", err)
	}
	return nil
}

// ClearAllOrderSummaries empties every user's summary list
func (s *Store) ClearAllOrderSummaries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET orders = '[]'::jsonb")
	if err != nil {
		return fmt.Errorf("failed to clear order summaries: %w", err)
	}
	return nil
}
