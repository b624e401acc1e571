package checkout

import (
	"time"

	"github.com/brocantio/checkout/internal/domain/errors"
)

// Field names, matching the wire format of the backend transaction payload.
const (
	FieldAddress    = "address"
	FieldPostalCode = "postalCode"
	FieldCountry    = "country"
	FieldCardNumber = "cardNumber"
	FieldExpiry     = "expiry"
	FieldCVV        = "cvv"
)

const (
	cardNumberDigits = 16
	expiryDigits     = 4
	cvvDigits        = 3
)

// Rule validates a single field value at a given point in time.
type Rule func(field, value string, now time.Time) *errors.ValidationError

// FieldRule names a required field and the rules it must satisfy.
type FieldRule struct {
	Name  string
	Rules []Rule
}

// Step describes one page of the checkout wizard.
type Step struct {
	Name   string
	Fields []FieldRule
}

func required(field, value string, _ time.Time) *errors.ValidationError {
	return RequiredNonEmpty(field, value)
}

func digits(n int) Rule {
	return func(field, value string, _ time.Time) *errors.ValidationError {
		return ExactDigitLength(field, value, n)
	}
}

func expiryInFuture(field, value string, now time.Time) *errors.ValidationError {
	return CardExpiryInFuture(field, value, now)
}

// Steps is the fixed two-step wizard definition: shipping first, payment
// second. It is static configuration, consulted on every advance and submit.
var Steps = [2]Step{
	{
		Name: "shipping",
		Fields: []FieldRule{
			{Name: FieldAddress, Rules: []Rule{required}},
			{Name: FieldPostalCode, Rules: []Rule{required}},
			{Name: FieldCountry, Rules: []Rule{required}},
		},
	},
	{
		Name: "payment",
		Fields: []FieldRule{
			{Name: FieldCardNumber, Rules: []Rule{digits(cardNumberDigits)}},
			{Name: FieldExpiry, Rules: []Rule{digits(expiryDigits), expiryInFuture}},
			{Name: FieldCVV, Rules: []Rule{digits(cvvDigits)}},
		},
	},
}

// KnownField reports whether name is one of the wizard's fields.
func KnownField(name string) bool {
	for _, step := range Steps {
		for _, f := range step.Fields {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

// validateStep runs every rule of every field in the step against the stored
// values and returns the full field-to-message mapping, not just the first
// failure.
func validateStep(step Step, values map[string]string, now time.Time) map[string]string {
	failures := make(map[string]string)
	for _, f := range step.Fields {
		for _, rule := range f.Rules {
			if verr := rule(f.Name, values[f.Name], now); verr != nil {
				failures[f.Name] = verr.Message
				break
			}
		}
	}
	return failures
}
