package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStatusStarted, CheckoutStatusPaymentPending))
	assert.True(t, CanTransitionTo(CheckoutStatusStarted, CheckoutStatusCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusStarted, CheckoutStatusCancelled))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentPending, CheckoutStatusCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentPending, CheckoutStatusCancelled))

	// Terminal states never transition.
	assert.False(t, CanTransitionTo(CheckoutStatusCompleted, CheckoutStatusCancelled))
	assert.False(t, CanTransitionTo(CheckoutStatusCancelled, CheckoutStatusCompleted))
	assert.False(t, CanTransitionTo(CheckoutStatusPaymentPending, CheckoutStatusStarted))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, CheckoutStatusStarted.IsTerminal())
	assert.False(t, CheckoutStatusPaymentPending.IsTerminal())
	assert.True(t, CheckoutStatusCompleted.IsTerminal())
	assert.True(t, CheckoutStatusCancelled.IsTerminal())
}
