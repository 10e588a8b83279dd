package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"oms-api/internal/models"
	"oms-api/internal/store"
)

// memStore is an in-memory stand-in for the sqlx store. All methods are
// mutex-guarded so concurrency tests can run against it.
type memStore struct {
	mu        sync.Mutex
	products  map[string]*models.Product
	orders    map[int64]*models.Order
	users     map[string]*models.User
	seed      int64
	lastOrder int64
	allocated bool
}

func newMemStore(seed int64) *memStore {
	return &memStore{
		products: make(map[string]*models.Product),
		orders:   make(map[int64]*models.Order),
		users:    make(map[string]*models.User),
		seed:     seed,
	}
}

func (m *memStore) addProduct(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.products[p.ProductID] = &cp
}

func (m *memStore) addUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.UserID] = &cp
}

func (m *memStore) addOrder(o models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := o
	m.orders[o.OrderID] = &cp
}

func (m *memStore) stockOf(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

func (m *memStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrProductNotFound, productID)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) DecrementStock(ctx context.Context, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementLocked(productID, qty)
}

func (m *memStore) DecrementStockBatch(ctx context.Context, items []models.StockDeduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// all-or-nothing, like the transactional batch
	for _, item := range items {
		p, ok := m.products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", store.ErrInsufficientStock, item.ProductID)
		}
		if p.Stock < item.Quantity {
			return fmt.Errorf("%w: %s", store.ErrInsufficientStock, item.ProductID)
		}
	}
	for _, item := range items {
		m.products[item.ProductID].Stock -= item.Quantity
	}
	return nil
}

func (m *memStore) decrementLocked(productID string, qty int) error {
	p, ok := m.products[productID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrProductNotFound, productID)
	}
	if p.Stock < qty {
		return fmt.Errorf("%w: %s", store.ErrInsufficientStock, productID)
	}
	p.Stock -= qty
	return nil
}

func (m *memStore) CreateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	m.orders[order.OrderID] = &cp
	return nil
}

func (m *memStore) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", store.ErrOrderNotFound, orderID)
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memStore) GetOrdersByStatus(ctx context.Context, status models.Status, from, to *time.Time) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.Status != status {
			continue
		}
		if from != nil && o.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && o.CreatedAt.After(*to) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, orderID int64, status models.Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %d", store.ErrOrderNotFound, orderID)
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

func (m *memStore) DeleteOrder(ctx context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[orderID]; !ok {
		return fmt.Errorf("%w: %d", store.ErrOrderNotFound, orderID)
	}
	delete(m.orders, orderID)
	return nil
}

func (m *memStore) DeleteAllOrders(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.orders))
	m.orders = make(map[int64]*models.Order)
	return n, nil
}

func (m *memStore) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userID)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
}

func (m *memStore) UpdateCart(ctx context.Context, userID string, cart models.LineItems) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, userID)
	}
	u.Cart = cart
	return nil
}

func (m *memStore) AppendOrderSummary(ctx context.Context, userID string, summary models.OrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, userID)
	}
	u.Orders = append(u.Orders, summary)
	return nil
}

func (m *memStore) RemoveOrderSummary(ctx context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		kept := u.Orders[:0]
		for _, s := range u.Orders {
			if s.OrderID != orderID {
				kept = append(kept, s)
			}
		}
		u.Orders = kept
	}
	return nil
}

func (m *memStore) ClearAllOrderSummaries(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		u.Orders = models.OrderSummaries{}
	}
	return nil
}

// NextOrderID mirrors the lazy-seeded upsert counter
func (m *memStore) NextOrderID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.allocated {
		m.lastOrder = m.seed
		m.allocated = true
	}
	m.lastOrder++
	return m.lastOrder, nil
}

func (m *memStore) lastAllocated() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.allocated {
		return m.seed
	}
	return m.lastOrder
}

// fixedClock always returns the same instant
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// stubDecider returns a fixed decision
type stubDecider struct {
	decision bool
}

func (d stubDecider) Decide() bool { return d.decision }

// recordingNotifier captures sent messages
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Send(recipient, message string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ack := fmt.Sprintf("Email sent to %s: %s", recipient, message)
	n.messages = append(n.messages, ack)
	return ack
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
