package store

import (
	"context"
	"fmt"
)

const sequenceRow = 1

// NextOrderID atomically increments the order-id counter and returns
// the new value. The counter row is created lazily with the configured
// seed; creation and increment happen in one upsert, so the first call
// returns seed+1 and concurrent callers never observe the same value.
func (s *Store) NextOrderID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO order_sequence (id, last_order)
		VALUES ($1, $2 + 1)
		ON CONFLICT (id) DO UPDATE SET last_order = order_sequence.last_order + 1
		RETURNING last_order`,
		sequenceRow, s.seed)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate order id: %w", err)
	}
	return id, nil
}

// LastOrderID returns the most recently allocated order id, or the seed
// if nothing has been allocated yet.
func (s *Store) LastOrderID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		"SELECT COALESCE((SELECT last_order FROM order_sequence WHERE id = $1), $2)",
		sequenceRow, s.seed)
	return id, err
}
