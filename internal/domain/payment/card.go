package payment

import (
	"strings"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CARD VALIDATION
// Pure functions, no I/O. Card numbers never leave this package unmasked.
// ══════════════════════════════════════════════════════════════════════════════

// Card holds the payment card details supplied by the student.
// The full number exists only in memory for the duration of a charge;
// persistence stores the masked form.
type Card struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

var (
	// ErrInvalidCardNumber - not 13-19 digits or failed the Luhn check.
	ErrInvalidCardNumber = shared.NewDomainError("payment", "ValidateCard", shared.ErrBadRequest, "invalid card number")

	// ErrCardExpired - expiry month/year is in the past.
	ErrCardExpired = shared.NewDomainError("payment", "ValidateCard", shared.ErrBadRequest, "card is expired")

	// ErrInvalidExpiry - expiry month outside 1-12.
	ErrInvalidExpiry = shared.NewDomainError("payment", "ValidateCard", shared.ErrBadRequest, "invalid expiry date")
)

// ValidateCard checks the card number and expiry.
// Number must be 13-19 digits passing the Luhn checksum; the expiry must not be
// in the past. Two-digit years are normalized to 2000+.
func ValidateCard(card Card, now time.Time) error {
	digits := normalizeNumber(card.Number)
	if len(digits) < 13 || len(digits) > 19 {
		return ErrInvalidCardNumber
	}
	if !luhnValid(digits) {
		return ErrInvalidCardNumber
	}

	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return ErrInvalidExpiry
	}

	year := card.ExpiryYear
	if year < 100 {
		year += 2000
	}

	// The card is valid through the last instant of its expiry month.
	endOfMonth := time.Date(year, time.Month(card.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0)
	if !now.UTC().Before(endOfMonth) {
		return ErrCardExpired
	}

	return nil
}

// MaskCardNumber keeps the first 6 and last 4 digits and replaces the rest
// with '*'. Numbers of 10 digits or fewer are returned unchanged: first 6 plus
// last 4 would already reveal the whole number, so masking is pointless.
func MaskCardNumber(number string) string {
	digits := normalizeNumber(number)
	if len(digits) <= 10 {
		return digits
	}

	masked := make([]byte, len(digits))
	for i := range digits {
		if i < 6 || i >= len(digits)-4 {
			masked[i] = digits[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// normalizeNumber strips spaces and dashes, leaving the raw digit string.
// Any other character survives and will fail the length/Luhn checks.
func normalizeNumber(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r == ' ' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// luhnValid reports whether the digit string passes the Luhn checksum.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
