package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/brocantio/checkout/internal/domain/errors"
)

// RequiredNonEmpty fails when the value is empty or whitespace-only.
func RequiredNonEmpty(field, value string) *errors.ValidationError {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(field, "is required")
	}
	return nil
}

// ExactDigitLength fails unless the value is exactly n characters, all 0-9.
func ExactDigitLength(field, value string, n int) *errors.ValidationError {
	if len(value) != n {
		return errors.NewValidationError(field, fmt.Sprintf("must be %d digits", n))
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return errors.NewValidationError(field, fmt.Sprintf("must be %d digits", n))
		}
	}
	return nil
}

// CardExpiryInFuture validates a 4-digit MMYY expiry. The month must be in
// [01,12] and the month/year must be strictly after the current month: a card
// expiring this very month is already rejected.
func CardExpiryInFuture(field, value string, now time.Time) *errors.ValidationError {
	if err := ExactDigitLength(field, value, 4); err != nil {
		return errors.NewValidationError(field, "enter a valid expiry date (MMYY)")
	}

	month := int(value[0]-'0')*10 + int(value[1]-'0')
	year := 2000 + int(value[2]-'0')*10 + int(value[3]-'0')

	if month < 1 || month > 12 {
		return errors.NewValidationError(field, "enter a valid month between 01 and 12")
	}

	if year < now.Year() || (year == now.Year() && month <= int(now.Month())) {
		return errors.NewValidationError(field, "the expiry date must be in the future")
	}

	return nil
}
