package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SIMULATED GATEWAY
// Development stand-in when no real gateway is configured. Deterministic:
// card numbers ending in an even digit are declined, everything else approves.
// The common test card 4111111111111111 approves; 4000000000000002 declines.
// ══════════════════════════════════════════════════════════════════════════════

// Simulator implements payment.Gateway without any external calls.
type Simulator struct {
	charges int64
	refunds int64
}

// NewSimulator creates a new simulated gateway.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Charge approves or declines deterministically based on the card number.
func (s *Simulator) Charge(_ context.Context, paymentRef string, _ shared.Money, card payment.Card) (*payment.ChargeResult, error) {
	atomic.AddInt64(&s.charges, 1)

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, card.Number)

	if len(digits) > 0 && (digits[len(digits)-1]-'0')%2 == 0 {
		return &payment.ChargeResult{
			Approved:      false,
			DeclineReason: "insufficient funds",
		}, nil
	}

	return &payment.ChargeResult{
		Approved:      true,
		TransactionID: fmt.Sprintf("sim-%s-%s", paymentRef, uuid.NewString()[:8]),
	}, nil
}

// Refund always approves.
func (s *Simulator) Refund(_ context.Context, transactionID string, _ shared.Money, _ string) (*payment.RefundResult, error) {
	atomic.AddInt64(&s.refunds, 1)

	return &payment.RefundResult{
		Approved: true,
		RefundID: "sim-refund-" + transactionID,
	}, nil
}
