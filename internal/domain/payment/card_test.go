package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var cardCheckTime = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestValidateCard_AcceptsKnownGoodNumber(t *testing.T) {
	card := Card{
		Number:      "4111111111111111",
		HolderName:  "JANE DOE",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}

	assert.NoError(t, ValidateCard(card, cardCheckTime))
}

func TestValidateCard_AcceptsSpacesAndDashes(t *testing.T) {
	card := Card{Number: "4111 1111-1111 1111", ExpiryMonth: 12, ExpiryYear: 2030}

	assert.NoError(t, ValidateCard(card, cardCheckTime))
}

func TestValidateCard_RejectsLuhnFailure(t *testing.T) {
	card := Card{Number: "4111111111111112", ExpiryMonth: 12, ExpiryYear: 2030}

	err := ValidateCard(card, cardCheckTime)
	assert.ErrorIs(t, err, ErrInvalidCardNumber)
}

func TestValidateCard_RejectsWrongLength(t *testing.T) {
	// 12 digits, below the minimum of 13.
	short := Card{Number: "411111111111", ExpiryMonth: 12, ExpiryYear: 2030}
	assert.ErrorIs(t, ValidateCard(short, cardCheckTime), ErrInvalidCardNumber)

	// 20 digits, above the maximum of 19.
	long := Card{Number: "41111111111111111115", ExpiryMonth: 12, ExpiryYear: 2030}
	assert.ErrorIs(t, ValidateCard(long, cardCheckTime), ErrInvalidCardNumber)
}

func TestValidateCard_RejectsNonDigitCharacters(t *testing.T) {
	card := Card{Number: "4111-1111-1111-11ab", ExpiryMonth: 12, ExpiryYear: 2030}

	assert.ErrorIs(t, ValidateCard(card, cardCheckTime), ErrInvalidCardNumber)
}

func TestValidateCard_RejectsBadExpiryMonth(t *testing.T) {
	card := Card{Number: "4111111111111111", ExpiryMonth: 13, ExpiryYear: 2030}
	assert.ErrorIs(t, ValidateCard(card, cardCheckTime), ErrInvalidExpiry)

	card.ExpiryMonth = 0
	assert.ErrorIs(t, ValidateCard(card, cardCheckTime), ErrInvalidExpiry)
}

func TestValidateCard_ExpiryIsInclusiveThroughEndOfMonth(t *testing.T) {
	card := Card{Number: "4111111111111111", ExpiryMonth: 3, ExpiryYear: 2026}

	// Still valid on the last day of the expiry month.
	lastDay := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	assert.NoError(t, ValidateCard(card, lastDay))

	// Expired the first instant of the following month.
	firstOfNext := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, ValidateCard(card, firstOfNext), ErrCardExpired)
}

func TestValidateCard_NormalizesTwoDigitYears(t *testing.T) {
	card := Card{Number: "4111111111111111", ExpiryMonth: 12, ExpiryYear: 30}

	assert.NoError(t, ValidateCard(card, cardCheckTime))

	card.ExpiryYear = 20 // 2020, in the past
	assert.ErrorIs(t, ValidateCard(card, cardCheckTime), ErrCardExpired)
}

func TestMaskCardNumber_MasksMiddleDigits(t *testing.T) {
	assert.Equal(t, "411111******1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "411111******1111", MaskCardNumber("4111 1111 1111 1111"))
}

func TestMaskCardNumber_ShortNumbersStayUnchanged(t *testing.T) {
	// At 10 digits the first-6/last-4 window already covers everything.
	assert.Equal(t, "4111111111", MaskCardNumber("4111111111"))

	// One digit past the boundary masks exactly one digit.
	assert.Equal(t, "411111*1111", MaskCardNumber("41111111111"))
}
