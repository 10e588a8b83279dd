package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCardShape(t *testing.T) {
	gen := NewCardGenerator(fixedClock{now: testNow}, stubDecider{decision: false})

	numberRe := regexp.MustCompile(`^[45]\d{15}$`)
	expiryRe := regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe := regexp.MustCompile(`^[1-9]\d{2}$`)

	for i := 0; i < 50; i++ {
		card := gen.Generate("John Doe")
		assert.Equal(t, "John Doe", card.Name)
		assert.Regexp(t, numberRe, card.CreditCardNumber)
		assert.Regexp(t, expiryRe, card.ExpiryDate)
		assert.Regexp(t, cvvRe, card.CVV)
	}
}

func TestGenerateCardExpiryBranches(t *testing.T) {
	expiredGen := NewCardGenerator(fixedClock{now: testNow}, stubDecider{decision: true})
	for i := 0; i < 20; i++ {
		card := expiredGen.Generate("John Doe")
		expired, err := card.Expired(testNow)
		require.NoError(t, err)
		assert.True(t, expired, "decider=true must produce an expired card, got %s", card.ExpiryDate)
	}

	validGen := NewCardGenerator(fixedClock{now: testNow}, stubDecider{decision: false})
	for i := 0; i < 20; i++ {
		card := validGen.Generate("John Doe")
		expired, err := card.Expired(testNow)
		require.NoError(t, err)
		assert.False(t, expired, "decider=false must produce a valid card, got %s", card.ExpiryDate)
	}
}
