package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"oms-api/internal/models"
)

// CoinFlip is the production Decider: an evenly weighted random choice
type CoinFlip struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoinFlip creates a Decider seeded from the current time
func NewCoinFlip() *CoinFlip {
	return &CoinFlip{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (c *CoinFlip) Decide() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(2) == 0
}

// CardGenerator builds sample credit cards for testing the checkout
// flow. The expiry branch (expired vs valid) comes from the injected
// Decider so both paths can be forced.
type CardGenerator struct {
	clock   Clock
	decider Decider
	mu      sync.Mutex
	rng     *rand.Rand
}

// NewCardGenerator creates a card generator
func NewCardGenerator(clock Clock, decider Decider) *CardGenerator {
	return &CardGenerator{
		clock:   clock,
		decider: decider,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate builds a card for the named holder. Card numbers start with
// 4 or 5 and carry 16 digits.
func (g *CardGenerator) Generate(name string) models.CreditCard {
	g.mu.Lock()
	defer g.mu.Unlock()

	digits := make([]byte, 16)
	digits[0] = byte('4' + g.rng.Intn(2))
	for i := 1; i < len(digits); i++ {
		digits[i] = byte('0' + g.rng.Intn(10))
	}

	// expiry moves in whole months from the first of the current
	// month, so the branch is unambiguous at MM/YY granularity
	now := g.clock.Now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var expiry time.Time
	if g.decider.Decide() {
		expiry = month.AddDate(0, -(1 + g.rng.Intn(60)), 0)
	} else {
		expiry = month.AddDate(0, 12+g.rng.Intn(48), 0)
	}

	return models.CreditCard{
		Name:             name,
		CreditCardNumber: string(digits),
		ExpiryDate:       expiry.Format("01/06"),
		CVV:              fmt.Sprintf("%03d", 100+g.rng.Intn(900)),
	}
}
