package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusNextIsLinear(t *testing.T) {
	next, ok := StatusPending.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusProcessing, next)

	next, ok = StatusProcessing.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, next)

	next, ok = StatusShipped.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = StatusDelivered.Next()
	assert.False(t, ok)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.True(t, StatusDelivered.Terminal())
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"Pending", "Processing", "Shipped", "Delivered"} {
		status, ok := ParseStatus(raw)
		assert.True(t, ok)
		assert.Equal(t, raw, string(status))
	}

	for _, raw := range []string{"", "pending", "Cancelled", "SHIPPED"} {
		_, ok := ParseStatus(raw)
		assert.False(t, ok, "%q must not parse", raw)
	}
}
