package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemsMerge(t *testing.T) {
	cart := LineItems{}

	cart = cart.Merge(LineItem{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1})
	cart = cart.Merge(LineItem{ProductID: "p002", Name: "Mouse", Price: 25, Quantity: 2})
	require.Len(t, cart, 2)

	cart = cart.Merge(LineItem{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 3})
	require.Len(t, cart, 2)
	assert.Equal(t, 4, cart[0].Quantity)
	assert.Equal(t, 2, cart[1].Quantity)
}

func TestCreditCardExpired(t *testing.T) {
	now := time.Date(2025, 2, 25, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expiry  string
		expired bool
	}{
		{"future year", "01/27", false},
		{"past year", "12/24", true},
		{"same year later month", "03/25", false},
		{"same year earlier month", "01/25", true},
		{"current month", "02/25", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := CreditCard{ExpiryDate: tt.expiry}
			expired, err := card.Expired(now)
			require.NoError(t, err)
			assert.Equal(t, tt.expired, expired)
		})
	}
}

func TestCreditCardExpiredMalformed(t *testing.T) {
	for _, raw := range []string{"", "13/25", "2025-02", "02-25"} {
		card := CreditCard{ExpiryDate: raw}
		_, err := card.Expired(time.Now())
		assert.Error(t, err, "%q must not parse", raw)
	}
}

func TestLineItemsScanHandlesNull(t *testing.T) {
	var cart LineItems
	require.NoError(t, cart.Scan(nil))
	assert.NotNil(t, cart)
	assert.Empty(t, cart)

	require.NoError(t, cart.Scan([]byte(`[{"product_id":"p001","name":"Laptop","price":1200,"quantity":1}]`)))
	require.Len(t, cart, 1)
	assert.Equal(t, "p001", cart[0].ProductID)
}

func TestRoleAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.Admin())
	assert.False(t, RoleCustomer.Admin())
	assert.False(t, Role("").Admin())
}
