package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

func simCard(number string) payment.Card {
	return payment.Card{
		Number:      number,
		HolderName:  "JANE DOE",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}

func TestSimulator_StandardTestCardApproves(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Charge(context.Background(), "pay-1", shared.MustMoney(4999, "USD"), simCard("4111111111111111"))
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Contains(t, result.TransactionID, "sim-pay-1-")
	assert.Empty(t, result.DeclineReason)
}

func TestSimulator_EvenLastDigitDeclines(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Charge(context.Background(), "pay-1", shared.MustMoney(4999, "USD"), simCard("4000000000000002"))
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Equal(t, "insufficient funds", result.DeclineReason)
	assert.Empty(t, result.TransactionID)
}

func TestSimulator_IgnoresSeparatorsWhenPickingLastDigit(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Charge(context.Background(), "pay-1", shared.MustMoney(4999, "USD"), simCard("4111-1111-1111-1111"))
	require.NoError(t, err)
	assert.True(t, result.Approved)
}

func TestSimulator_RefundAlwaysApproves(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Refund(context.Background(), "txn-42", shared.MustMoney(4999, "USD"), "course cancelled")
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, "sim-refund-txn-42", result.RefundID)
}
