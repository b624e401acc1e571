package service

import (
	"context"
	"testing"
	"time"

	"github.com/brocantio/checkout/internal/domain/checkout"
	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/transaction"
	"github.com/brocantio/checkout/internal/infrastructure/observability"
	"github.com/brocantio/checkout/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckoutService() (*CheckoutService, *testutil.MockProductFetcher, *testutil.MockTransactionSubmitter, *testutil.MockNotifier) {
	products := testutil.NewMockProductFetcher()
	submitter := &testutil.MockTransactionSubmitter{}
	notifier := &testutil.MockNotifier{}
	metrics := observability.NewMetrics("checkout_test", prometheus.NewRegistry())

	svc := NewCheckoutService(products, submitter, notifier, metrics, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc, products, submitter, notifier
}

func openSession(t *testing.T, svc *CheckoutService, products *testutil.MockProductFetcher) *checkout.Session {
	t.Helper()
	products.AddProduct(testutil.NewTestProduct("p1", "u1"))
	sess, err := svc.Open(context.Background(), "p1", "u2", "key")
	require.NoError(t, err)
	return sess
}

func fillShippingStep(t *testing.T, svc *CheckoutService, sess *checkout.Session) {
	t.Helper()
	ctx := context.Background()
	for field, value := range map[string]string{
		checkout.FieldAddress:    "1 Main St",
		checkout.FieldPostalCode: "00001",
		checkout.FieldCountry:    "France",
	} {
		_, err := svc.UpdateField(ctx, sess.ID, "u2", field, value)
		require.NoError(t, err)
	}
}

func fillPaymentStep(t *testing.T, svc *CheckoutService, sess *checkout.Session) {
	t.Helper()
	ctx := context.Background()
	for field, value := range map[string]string{
		checkout.FieldCardNumber: "1111222233334444",
		checkout.FieldExpiry:     "1299",
		checkout.FieldCVV:        "123",
	} {
		_, err := svc.UpdateField(ctx, sess.ID, "u2", field, value)
		require.NoError(t, err)
	}
}

// --- Open ---

func TestOpen_PermittedForStranger(t *testing.T) {
	svc, products, _, _ := setupCheckoutService()

	sess := openSession(t, svc, products)
	assert.Equal(t, checkout.StateShipping, sess.State())
	assert.Equal(t, "u2", sess.BuyerID)
	assert.Equal(t, 1, svc.sessions.Len())
}

func TestOpen_OwnerBlocked(t *testing.T) {
	svc, products, _, notifier := setupCheckoutService()
	products.AddProduct(testutil.NewTestProduct("p1", "u1"))

	_, err := svc.Open(context.Background(), "p1", "u1", "key")
	assert.ErrorIs(t, err, domainErrors.ErrOwnerBlocked)

	// No session must be opened for a blocked purchase.
	assert.Equal(t, 0, svc.sessions.Len())
	assert.NotNil(t, notifier.LastError())
}

func TestOpen_AlreadySold(t *testing.T) {
	svc, products, _, _ := setupCheckoutService()
	products.AddProduct(testutil.NewSoldTestProduct("p1", "u1", "u3"))

	_, err := svc.Open(context.Background(), "p1", "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrProductAlreadySold)
	assert.Equal(t, 0, svc.sessions.Len())
}

func TestOpen_ProductNotFound(t *testing.T) {
	svc, _, _, notifier := setupCheckoutService()

	_, err := svc.Open(context.Background(), "missing", "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrProductNotFound)
	assert.NotNil(t, notifier.LastError())
}

func TestOpen_CountsAttemptsByPermission(t *testing.T) {
	products := testutil.NewMockProductFetcher()
	metrics := observability.NewMetrics("checkout_test", prometheus.NewRegistry())
	svc := NewCheckoutService(products, &testutil.MockTransactionSubmitter{}, &testutil.MockNotifier{}, metrics, zerolog.Nop())
	products.AddProduct(testutil.NewTestProduct("p1", "u1"))
	ctx := context.Background()

	_, err := svc.Open(ctx, "p1", "u2", "key")
	require.NoError(t, err)
	_, err = svc.Open(ctx, "p1", "u1", "key")
	assert.ErrorIs(t, err, domainErrors.ErrOwnerBlocked)

	granted := metrics.SessionOpenAttempts.WithLabelValues(string(checkout.PermissionGranted))
	blocked := metrics.SessionOpenAttempts.WithLabelValues(string(checkout.PermissionOwnerBlocked))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(granted))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(blocked))

	// Only the denied attempt shows up in the denial counter, and only the
	// granted one opened a session.
	denied := metrics.PermissionDenied.WithLabelValues(string(checkout.PermissionOwnerBlocked))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(denied))
	assert.Equal(t, 1, svc.sessions.Len())
}

// --- Session ownership ---

func TestSessionOwnership_OtherUserSeesNotFound(t *testing.T) {
	svc, products, _, _ := setupCheckoutService()
	sess := openSession(t, svc, products)

	_, err := svc.Get(context.Background(), sess.ID, "u9")
	assert.ErrorIs(t, err, domainErrors.ErrSessionNotFound)
}

// --- Full flow ---

func TestFullPurchaseFlow(t *testing.T) {
	svc, products, submitter, notifier := setupCheckoutService()
	ctx := context.Background()

	sess := openSession(t, svc, products)
	fillShippingStep(t, svc, sess)

	_, err := svc.Advance(ctx, sess.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, checkout.StatePayment, sess.State())

	fillPaymentStep(t, svc, sess)

	result, err := svc.Submit(ctx, sess.ID, "u2", "key")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", result.TransactionID)
	assert.Equal(t, "/transactions/own", result.RedirectTo)
	assert.Equal(t, checkout.StateCompleted, sess.State())

	// Session released after completion.
	assert.Equal(t, 0, svc.sessions.Len())
	assert.Len(t, notifier.Successes, 1)

	// The submitted payload carries the full session.
	reqs := submitter.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "p1", reqs[0].ProductID)
	assert.Equal(t, "u2", reqs[0].BuyerID)
	assert.Equal(t, "France", reqs[0].ShippingDetails.Country)
	assert.Equal(t, "1111222233334444", reqs[0].CardDetails.Number)
}

func TestAdvance_IncompleteShippingNotifies(t *testing.T) {
	svc, products, _, notifier := setupCheckoutService()
	ctx := context.Background()
	sess := openSession(t, svc, products)

	_, err := svc.UpdateField(ctx, sess.ID, "u2", checkout.FieldAddress, "1 Main St")
	require.NoError(t, err)

	_, err = svc.Advance(ctx, sess.ID, "u2")
	assert.ErrorIs(t, err, domainErrors.ErrStepIncomplete)
	assert.Equal(t, checkout.StateShipping, sess.State())
	require.NotNil(t, notifier.LastError())
	assert.Equal(t, "Incomplete Form", notifier.LastError().Message)
}

func TestSubmit_ExpiredCardLeavesSessionAtPayment(t *testing.T) {
	svc, products, submitter, _ := setupCheckoutService()
	ctx := context.Background()
	sess := openSession(t, svc, products)
	fillShippingStep(t, svc, sess)
	_, err := svc.Advance(ctx, sess.ID, "u2")
	require.NoError(t, err)

	fillPaymentStep(t, svc, sess)
	// January 2022 is behind the fixed June 2025 clock.
	_, err = svc.UpdateField(ctx, sess.ID, "u2", checkout.FieldExpiry, "0122")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sess.ID, "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrStepIncomplete)
	assert.Equal(t, checkout.StatePayment, sess.State())
	assert.Contains(t, sess.FieldErrors(), checkout.FieldExpiry)
	assert.Empty(t, submitter.Requests())
}

// --- Submit-time permission re-check ---

func TestSubmit_ProductSoldBetweenOpenAndSubmit(t *testing.T) {
	svc, products, submitter, notifier := setupCheckoutService()
	ctx := context.Background()
	sess := openSession(t, svc, products)
	fillShippingStep(t, svc, sess)
	_, err := svc.Advance(ctx, sess.ID, "u2")
	require.NoError(t, err)
	fillPaymentStep(t, svc, sess)

	// Someone else buys the product while the wizard is open.
	products.AddProduct(testutil.NewSoldTestProduct("p1", "u1", "u3"))

	_, err = svc.Submit(ctx, sess.ID, "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrProductAlreadySold)

	// No request reached the backend and the session is gone.
	assert.Empty(t, submitter.Requests())
	assert.Equal(t, 0, svc.sessions.Len())
	assert.Equal(t, checkout.StateCancelled, sess.State())
	assert.NotNil(t, notifier.LastError())
}

// --- Submission failures ---

func TestSubmit_BackendRejectionPreservesSession(t *testing.T) {
	svc, products, submitter, notifier := setupCheckoutService()
	ctx := context.Background()
	sess := openSession(t, svc, products)
	fillShippingStep(t, svc, sess)
	_, err := svc.Advance(ctx, sess.ID, "u2")
	require.NoError(t, err)
	fillPaymentStep(t, svc, sess)

	submitter.SubmitTransactionFunc = func(ctx context.Context, req *transaction.Request, credential string) (string, error) {
		return "", domainErrors.ErrTransactionRejected
	}

	_, err = svc.Submit(ctx, sess.ID, "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrTransactionRejected)

	// Back at the payment step with everything still filled in: the user can
	// retry.
	assert.Equal(t, checkout.StatePayment, sess.State())
	assert.Equal(t, "1299", sess.Fields()[checkout.FieldExpiry])
	assert.Empty(t, sess.FieldErrors())
	assert.Equal(t, 1, svc.sessions.Len())
	assert.NotNil(t, notifier.LastError())

	// And a retry succeeds.
	submitter.SubmitTransactionFunc = nil
	result, err := svc.Submit(ctx, sess.ID, "u2", "key")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", result.TransactionID)
}

func TestSubmit_CancelledMidFlightDiscardsResult(t *testing.T) {
	svc, products, submitter, notifier := setupCheckoutService()
	ctx := context.Background()
	sess := openSession(t, svc, products)
	fillShippingStep(t, svc, sess)
	_, err := svc.Advance(ctx, sess.ID, "u2")
	require.NoError(t, err)
	fillPaymentStep(t, svc, sess)

	submitter.SubmitTransactionFunc = func(ctx context.Context, req *transaction.Request, credential string) (string, error) {
		// The user closes the modal while the call is outstanding.
		require.NoError(t, sess.Cancel())
		return "tx-late", nil
	}

	_, err = svc.Submit(ctx, sess.ID, "u2", "key")
	assert.ErrorIs(t, err, domainErrors.ErrSessionClosed)
	assert.Equal(t, checkout.StateCancelled, sess.State())
	assert.Empty(t, notifier.Successes)
}

// --- Cancel and expiry ---

func TestCancel_ReleasesSession(t *testing.T) {
	svc, products, _, _ := setupCheckoutService()
	sess := openSession(t, svc, products)

	require.NoError(t, svc.Cancel(context.Background(), sess.ID, "u2"))
	assert.Equal(t, checkout.StateCancelled, sess.State())
	assert.Equal(t, 0, svc.sessions.Len())

	// Independent attempts on other products are unaffected: a fresh session
	// starts clean.
	fresh := openSession(t, svc, products)
	assert.Empty(t, fresh.Fields())
}

func TestExpireSessions(t *testing.T) {
	svc, products, _, _ := setupCheckoutService()
	openSession(t, svc, products)

	// The fixed clock makes every session instantly older than a zero TTL.
	base := svc.now()
	svc.now = func() time.Time { return base.Add(time.Hour) }

	dropped := svc.ExpireSessions(30 * time.Minute)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, svc.sessions.Len())
}
