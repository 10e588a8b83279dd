package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"oms-api/internal/models"
	"oms-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 2, 25, 10, 0, 0, 0, time.UTC)

func validCard() models.CreditCard {
	return models.CreditCard{
		Name:             "John Doe",
		CreditCardNumber: "4111111111111111",
		ExpiryDate:       "12/27",
		CVV:              "123",
	}
}

func newCheckoutFixture(seed int64, approve bool) (*CheckoutService, *memStore, *recordingNotifier) {
	m := newMemStore(seed)
	notifier := &recordingNotifier{}
	ledger := NewInventoryLedger(m, nil)
	svc := NewCheckoutService(m, m, m, ledger, m, fixedClock{now: testNow}, stubDecider{decision: approve}, notifier, nil)
	return svc, m, notifier
}

func TestCheckoutSuccess(t *testing.T) {
	svc, m, notifier := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart:     models.LineItems{{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1}},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeSuccess, result.Outcome)
	assert.Equal(t, int64(5), result.OrderID)
	assert.Equal(t, int64(1200), result.TotalPrice)

	assert.Equal(t, 99, m.stockOf("p001"))

	order, err := m.GetOrderByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "u12345", order.UserID)
	assert.Equal(t, int64(1200), order.TotalPrice)
	assert.Equal(t, testNow, order.CreatedAt)
	assert.Equal(t, testNow, order.UpdatedAt)

	user, err := m.GetUserByID(context.Background(), "u12345")
	require.NoError(t, err)
	assert.Empty(t, user.Cart)
	require.Len(t, user.Orders, 1)
	assert.Equal(t, models.OrderSummary{OrderID: 5, TotalPrice: 1200}, user.Orders[0])

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Email sent to john.doe@example.com")
	assert.Contains(t, sent[0], "your order is pending")
	assert.Contains(t, sent[0], "$1200")
	assert.Equal(t, sent[0], result.Email)
}

func TestCheckoutCardExpired(t *testing.T) {
	svc, m, notifier := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart:     models.LineItems{{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1}},
	})

	card := validCard()
	card.ExpiryDate = "01/24"

	result, err := svc.Checkout(context.Background(), "u12345", card)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeCardExpired, result.Outcome)
	assert.Contains(t, result.Email, "your card has expired")

	// nothing consumed
	assert.Equal(t, 100, m.stockOf("p001"))
	assert.Equal(t, int64(4), m.lastAllocated())
	user, _ := m.GetUserByID(context.Background(), "u12345")
	assert.Len(t, user.Cart, 1)
	assert.Len(t, notifier.sent(), 1)
}

func TestCheckoutExpiryIsMonthGranular(t *testing.T) {
	// card expiring the current month is still valid
	svc, m, _ := newCheckoutFixture(4, false)
	m.addProduct(models.Product{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100})
	m.addUser(models.User{
		UserID: "u12345",
		Email:  "john.doe@example.com",
		Cart:   models.LineItems{{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1}},
	})

	card := validCard()
	card.ExpiryDate = "02/25"

	result, err := svc.Checkout(context.Background(), "u12345", card)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePaymentDeclined, result.Outcome)
}

func TestCheckoutMalformedExpiry(t *testing.T) {
	svc, m, _ := newCheckoutFixture(4, true)
	m.addUser(models.User{UserID: "u12345", Email: "john.doe@example.com"})

	card := validCard()
	card.ExpiryDate = "2027-12"

	_, err := svc.Checkout(context.Background(), "u12345", card)
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, m, notifier := newCheckoutFixture(4, true)
	m.addUser(models.User{UserID: "u12345", Email: "john.doe@example.com", Cart: models.LineItems{}})

	// failed attempts can be retried, the error is stable
	for i := 0; i < 2; i++ {
		_, err := svc.Checkout(context.Background(), "u12345", validCard())
		assert.ErrorIs(t, err, ErrEmptyCart)
	}
	assert.Equal(t, int64(4), m.lastAllocated())
	assert.Empty(t, notifier.sent())
}

func TestCheckoutPaymentDeclined(t *testing.T) {
	svc, m, _ := newCheckoutFixture(4, false)
	m.addProduct(models.Product{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart:     models.LineItems{{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1}},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePaymentDeclined, result.Outcome)
	assert.Contains(t, result.Email, "your card was declined")

	assert.Equal(t, 100, m.stockOf("p001"))
	assert.Equal(t, int64(4), m.lastAllocated())
	user, _ := m.GetUserByID(context.Background(), "u12345")
	assert.Len(t, user.Cart, 1)
}

func TestCheckoutOutOfStockLeavesEverythingUntouched(t *testing.T) {
	svc, m, _ := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100})
	m.addProduct(models.Product{ProductID: "p007", Name: "Disc", Price: 15, Stock: 1})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart: models.LineItems{
			{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1},
			{ProductID: "p007", Name: "Disc", Price: 15, Quantity: 3},
		},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeOutOfStock, result.Outcome)
	assert.Equal(t, []string{"Disc"}, result.OutOfStock)
	assert.Contains(t, result.Email, "out of stock: Disc")

	// the stocked line must not be decremented either
	assert.Equal(t, 100, m.stockOf("p001"))
	assert.Equal(t, 1, m.stockOf("p007"))
	assert.Equal(t, int64(4), m.lastAllocated())
	user, _ := m.GetUserByID(context.Background(), "u12345")
	assert.Len(t, user.Cart, 2)
	_, err = m.GetOrderByID(context.Background(), 5)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestCheckoutRetryAfterRestock(t *testing.T) {
	svc, m, _ := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p007", Name: "Disc", Price: 15, Stock: 1})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart:     models.LineItems{{ProductID: "p007", Name: "Disc", Price: 15, Quantity: 3}},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	require.Equal(t, models.OutcomeOutOfStock, result.Outcome)

	m.addProduct(models.Product{ProductID: "p007", Name: "Disc", Price: 15, Stock: 10})

	result, err = svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSuccess, result.Outcome)
	assert.Equal(t, int64(5), result.OrderID)
	assert.Equal(t, 7, m.stockOf("p007"))
}

func TestCheckoutSkipsVanishedProducts(t *testing.T) {
	svc, m, _ := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p002", Name: "Mouse", Price: 25, Stock: 150})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart: models.LineItems{
			{ProductID: "p999", Name: "Ghost", Price: 10, Quantity: 2},
			{ProductID: "p002", Name: "Mouse", Price: 25, Quantity: 2},
		},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSuccess, result.Outcome)
	assert.Equal(t, int64(50), result.TotalPrice)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "p002", result.Items[0].ProductID)
}

func TestCheckoutPriceFromCatalogNotCart(t *testing.T) {
	// a stale cart price must not leak into the order total
	svc, m, _ := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p004", Name: "Monitor", Price: 300, Stock: 80})
	m.addUser(models.User{
		UserID:   "u12345",
		FullName: "John Doe",
		Email:    "john.doe@example.com",
		Cart:     models.LineItems{{ProductID: "p004", Name: "Monitor", Price: 250, Quantity: 2}},
	})

	result, err := svc.Checkout(context.Background(), "u12345", validCard())
	require.NoError(t, err)
	assert.Equal(t, int64(600), result.TotalPrice)
	assert.Equal(t, int64(300), result.Items[0].Price)
}

func TestCheckoutUnknownUser(t *testing.T) {
	svc, _, _ := newCheckoutFixture(4, true)
	_, err := svc.Checkout(context.Background(), "nobody", validCard())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestCheckoutConcurrentOrderIDsAreUnique(t *testing.T) {
	const buyers = 20

	svc, m, _ := newCheckoutFixture(4, true)
	m.addProduct(models.Product{ProductID: "p002", Name: "Mouse", Price: 25, Stock: 150})
	for i := 0; i < buyers; i++ {
		m.addUser(models.User{
			UserID:   fmt.Sprintf("u%05d", i),
			FullName: fmt.Sprintf("Buyer %d", i),
			Email:    fmt.Sprintf("buyer%d@example.com", i),
			Cart:     models.LineItems{{ProductID: "p002", Name: "Mouse", Price: 25, Quantity: 1}},
		})
	}

	var wg sync.WaitGroup
	ids := make(chan int64, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Checkout(context.Background(), fmt.Sprintf("u%05d", i), validCard())
			if assert.NoError(t, err) && assert.Equal(t, models.OutcomeSuccess, result.Outcome) {
				ids <- result.OrderID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "order id %d allocated twice", id)
		seen[id] = true
	}
	require.Len(t, seen, buyers)
	// contiguous range starting just above the seed
	for id := int64(5); id < int64(5+buyers); id++ {
		assert.True(t, seen[id], "order id %d missing from allocated range", id)
	}

	assert.Equal(t, 150-buyers, m.stockOf("p002"))
}
