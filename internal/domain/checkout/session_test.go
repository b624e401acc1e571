package checkout

import (
	"testing"
	"time"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

func fillShipping(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.UpdateField(FieldAddress, "1 Main St"))
	require.NoError(t, s.UpdateField(FieldPostalCode, "00001"))
	require.NoError(t, s.UpdateField(FieldCountry, "France"))
}

func fillPayment(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.UpdateField(FieldCardNumber, "1111222233334444"))
	require.NoError(t, s.UpdateField(FieldExpiry, "1299"))
	require.NoError(t, s.UpdateField(FieldCVV, "123"))
}

func TestNewSession_StartsAtShipping(t *testing.T) {
	s := NewSession("p1", "u2")
	assert.Equal(t, StateShipping, s.State())
	assert.Empty(t, s.Fields())
	assert.Empty(t, s.FieldErrors())
}

func TestUpdateField_UnknownFieldRejected(t *testing.T) {
	s := NewSession("p1", "u2")
	assert.ErrorIs(t, s.UpdateField("favoriteColor", "blue"), domainErrors.ErrUnknownField)
}

func TestAdvance_AllFieldsValid(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)

	require.NoError(t, s.Advance(testNow))
	assert.Equal(t, StatePayment, s.State())
	assert.Empty(t, s.FieldErrors())
}

func TestAdvance_MissingFieldsStaysPut(t *testing.T) {
	s := NewSession("p1", "u2")
	require.NoError(t, s.UpdateField(FieldAddress, "1 Main St"))

	err := s.Advance(testNow)
	assert.ErrorIs(t, err, domainErrors.ErrStepIncomplete)
	assert.Equal(t, StateShipping, s.State())

	// Every failing field is reported, not just the first.
	errs := s.FieldErrors()
	assert.NotContains(t, errs, FieldAddress)
	assert.Contains(t, errs, FieldPostalCode)
	assert.Contains(t, errs, FieldCountry)
}

func TestAdvance_WhitespaceOnlyFieldFails(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.UpdateField(FieldCountry, "   "))

	assert.ErrorIs(t, s.Advance(testNow), domainErrors.ErrStepIncomplete)
	assert.Equal(t, StateShipping, s.State())
}

func TestAdvance_ClearsPriorErrors(t *testing.T) {
	s := NewSession("p1", "u2")
	assert.Error(t, s.Advance(testNow))
	assert.NotEmpty(t, s.FieldErrors())

	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	assert.Empty(t, s.FieldErrors())
}

func TestRetreat_PreservesEnteredValues(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)

	require.NoError(t, s.Retreat())
	assert.Equal(t, StateShipping, s.State())

	require.NoError(t, s.Advance(testNow))
	assert.Equal(t, StatePayment, s.State())

	fields := s.Fields()
	assert.Equal(t, "1111222233334444", fields[FieldCardNumber])
	assert.Equal(t, "1299", fields[FieldExpiry])
	assert.Equal(t, "123", fields[FieldCVV])
}

func TestRetreat_FromShippingRejected(t *testing.T) {
	s := NewSession("p1", "u2")
	assert.ErrorIs(t, s.Retreat(), domainErrors.ErrInvalidStateTransition)
}

func TestBeginSubmit_FromShippingRejected(t *testing.T) {
	s := NewSession("p1", "u2")
	_, err := s.BeginSubmit(testNow)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStateTransition)
	assert.Equal(t, StateShipping, s.State())
}

func TestBeginSubmit_InvalidExpiryStaysAtPayment(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)
	require.NoError(t, s.UpdateField(FieldExpiry, "0122"))

	_, err := s.BeginSubmit(testNow)
	assert.ErrorIs(t, err, domainErrors.ErrStepIncomplete)
	assert.Equal(t, StatePayment, s.State())
	assert.Contains(t, s.FieldErrors(), FieldExpiry)
}

func TestBeginSubmit_BuildsFullRequest(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)

	req, err := s.BeginSubmit(testNow)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, s.State())
	assert.Equal(t, "p1", req.ProductID)
	assert.Equal(t, "u2", req.BuyerID)
	assert.Equal(t, "1 Main St", req.ShippingDetails.Address)
	assert.Equal(t, "00001", req.ShippingDetails.PostalCode)
	assert.Equal(t, "France", req.ShippingDetails.Country)
	assert.Equal(t, "1111222233334444", req.CardDetails.Number)
	assert.Equal(t, "1299", req.CardDetails.Expiry)
	assert.Equal(t, "123", req.CardDetails.CVV)
}

func TestSubmitting_BlocksAllNavigation(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)
	_, err := s.BeginSubmit(testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Advance(testNow), domainErrors.ErrSubmitInFlight)
	assert.ErrorIs(t, s.Retreat(), domainErrors.ErrSubmitInFlight)
	assert.ErrorIs(t, s.UpdateField(FieldCVV, "999"), domainErrors.ErrSubmitInFlight)

	_, err = s.BeginSubmit(testNow)
	assert.ErrorIs(t, err, domainErrors.ErrSubmitInFlight)
}

func TestCompleteSubmit_MovesToFinished(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)
	_, err := s.BeginSubmit(testNow)
	require.NoError(t, err)

	require.NoError(t, s.CompleteSubmit())
	assert.Equal(t, StateCompleted, s.State())
}

func TestFailSubmit_ReturnsToPaymentWithoutFieldErrors(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)
	_, err := s.BeginSubmit(testNow)
	require.NoError(t, err)

	require.NoError(t, s.FailSubmit())
	assert.Equal(t, StatePayment, s.State())
	assert.Empty(t, s.FieldErrors())

	// Entered data survives for a retry.
	assert.Equal(t, "1299", s.Fields()[FieldExpiry])
}

func TestCancel_WhileSubmitting_DiscardsResult(t *testing.T) {
	s := NewSession("p1", "u2")
	fillShipping(t, s)
	require.NoError(t, s.Advance(testNow))
	fillPayment(t, s)
	_, err := s.BeginSubmit(testNow)
	require.NoError(t, err)

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateCancelled, s.State())

	// The in-flight result lands after cancellation: no state mutation.
	assert.ErrorIs(t, s.CompleteSubmit(), domainErrors.ErrSessionClosed)
	assert.Equal(t, StateCancelled, s.State())
	assert.ErrorIs(t, s.FailSubmit(), domainErrors.ErrSessionClosed)
	assert.Equal(t, StateCancelled, s.State())
}

func TestCancel_FromTerminalRejected(t *testing.T) {
	s := NewSession("p1", "u2")
	require.NoError(t, s.Cancel())
	assert.ErrorIs(t, s.Cancel(), domainErrors.ErrSessionClosed)
}

func TestTerminalState_RejectsUpdates(t *testing.T) {
	s := NewSession("p1", "u2")
	require.NoError(t, s.Cancel())
	assert.ErrorIs(t, s.UpdateField(FieldAddress, "1 Main St"), domainErrors.ErrSessionClosed)
}
