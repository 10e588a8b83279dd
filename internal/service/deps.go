package service

import (
	"context"
	"time"

	"oms-api/internal/models"
)

// Storage dependencies. The sqlx store satisfies all of them; tests use
// in-memory fakes.

type ProductStore interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
	DecrementStockBatch(ctx context.Context, items []models.StockDeduction) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByStatus(ctx context.Context, status models.Status, from, to *time.Time) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.Status, updatedAt time.Time) error
	DeleteOrder(ctx context.Context, orderID int64) error
	DeleteAllOrders(ctx context.Context) (int64, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateCart(ctx context.Context, userID string, cart models.LineItems) error
	AppendOrderSummary(ctx context.Context, userID string, summary models.OrderSummary) error
	RemoveOrderSummary(ctx context.Context, orderID int64) error
	ClearAllOrderSummaries(ctx context.Context) error
}

// SequenceAllocator issues unique, strictly increasing order ids
type SequenceAllocator interface {
	NextOrderID(ctx context.Context) (int64, error)
}

// Clock supplies the current time; injectable for deterministic tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Decider is the binary randomness source behind payment simulation and
// card generation. Injected so tests can force both branches.
type Decider interface {
	Decide() bool
}

// EventPublisher publishes order lifecycle events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}
