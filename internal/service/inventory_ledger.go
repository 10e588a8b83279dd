package service

import (
	"context"
	"errors"
	"fmt"

	"oms-api/internal/models"
	"oms-api/internal/redisclient"
	"oms-api/internal/store"
	"oms-api/internal/util"

	"go.uber.org/zap"
)

// InventoryLedger holds per-product stock counts. The database is the
// source of truth for every mutation; Redis serves fast stock reads and
// is kept consistent after decrements. Cache failures degrade to
// DB-only operation, never to an error.
type InventoryLedger struct {
	products ProductStore
	cache    *redisclient.Client
	logger   *zap.Logger
}

// NewInventoryLedger creates an inventory ledger. cache may be nil.
func NewInventoryLedger(products ProductStore, cache *redisclient.Client) *InventoryLedger {
	return &InventoryLedger{
		products: products,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// GetStock returns a product's current stock count
func (l *InventoryLedger) GetStock(ctx context.Context, productID string) (int, error) {
	if l.cache != nil {
		stock, err := l.cache.GetStock(ctx, productID)
		if err == nil {
			return stock, nil
		}
		if !errors.Is(err, redisclient.ErrNotCached) {
			l.logger.Warn("Stock cache read failed, falling back to DB",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}

	product, err := l.products.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// Decrement atomically subtracts qty from a product's stock. Fails with
// store.ErrInsufficientStock without partial effect when qty exceeds
// current stock.
func (l *InventoryLedger) Decrement(ctx context.Context, productID string, qty int) error {
	ctx, span := util.StartSpan(ctx, "InventoryLedger.Decrement")
	defer span.End()

	if err := l.products.DecrementStock(ctx, productID, qty); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			util.StockDecrementsRejected.Inc()
		}
		return err
	}

	l.syncCache(ctx, productID, qty)
	return nil
}

// DecrementBatch applies a set of pre-validated decrements. The batch
// runs in one database transaction; a late shortfall fails the whole
// batch.
func (l *InventoryLedger) DecrementBatch(ctx context.Context, items []models.StockDeduction) error {
	ctx, span := util.StartSpan(ctx, "InventoryLedger.DecrementBatch")
	defer span.End()

	if err := l.products.DecrementStockBatch(ctx, items); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			util.StockDecrementsRejected.Inc()
		}
		return err
	}

	for _, item := range items {
		l.syncCache(ctx, item.ProductID, item.Quantity)
	}
	return nil
}

func (l *InventoryLedger) syncCache(ctx context.Context, productID string, qty int) {
	if l.cache == nil {
		return
	}
	if _, err := l.cache.DecrementStock(ctx, productID, qty); err != nil {
		l.logger.Warn("Stock cache sync failed, dropping entry",
			zap.String("product_id", productID),
			zap.Error(err))
		if err := l.cache.DeleteStock(ctx, productID); err != nil {
			l.logger.Error("Failed to drop stale stock cache entry",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}
}

// SyncToCache seeds the stock cache from the database, typically at
// startup.
func (l *InventoryLedger) SyncToCache(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}

	products, err := l.products.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	for _, product := range products {
		if err := l.cache.SetStock(ctx, product.ProductID, product.Stock); err != nil {
			l.logger.Error("Failed to cache stock",
				zap.String("product_id", product.ProductID),
				zap.Error(err))
		}
	}

	l.logger.Info("Stock cache synced", zap.Int("count", len(products)))
	return nil
}
