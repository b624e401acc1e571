package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/brocantio/checkout/internal/domain/checkout"
	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// transactionsPath is where the front-end sends the buyer after a completed
// purchase.
const transactionsPath = "/transactions/own"

// CheckoutService orchestrates the purchase flow: permission gate, wizard
// session, and final transaction submission.
type CheckoutService struct {
	products  ProductFetcher
	submitter TransactionSubmitter
	notifier  Notifier
	sessions  *SessionRegistry
	metrics   *observability.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(
	products ProductFetcher,
	submitter TransactionSubmitter,
	notifier Notifier,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		products:  products,
		submitter: submitter,
		notifier:  notifier,
		sessions:  NewSessionRegistry(),
		metrics:   metrics,
		logger:    logger.With().Str("component", "checkout").Logger(),
		now:       time.Now,
	}
}

// SubmitResult is returned on a completed purchase. Message and Description
// carry the user-facing notice so the front-end can toast it.
type SubmitResult struct {
	TransactionID string
	RedirectTo    string
	Message       string
	Description   string
}

const (
	successMessage     = "Transaction Successful"
	successDescription = "Your purchase has been recorded."
)

// Open fetches the product, runs the permission gate and, if purchase is
// permitted, opens a checkout session at the shipping step.
func (s *CheckoutService) Open(ctx context.Context, productID, userID, credential string) (*checkout.Session, error) {
	prod, err := s.products.FetchProduct(ctx, productID, credential)
	if err != nil {
		s.notifier.Error(ctx, userID, "Error", "Unable to fetch product details.")
		return nil, err
	}

	permission := checkout.CanInitiatePurchase(prod, userID)
	s.metrics.SessionOpenAttempts.WithLabelValues(string(permission)).Inc()
	if err := permission.Err(); err != nil {
		s.metrics.PermissionDenied.WithLabelValues(string(permission)).Inc()
		s.notifier.Error(ctx, userID, "Purchase Not Available", err.Error())
		return nil, err
	}

	sess := checkout.NewSession(productID, userID)
	s.sessions.Add(sess)
	s.metrics.ActiveSessions.Inc()

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("product_id", productID).
		Str("user_id", userID).
		Msg("checkout session opened")
	return sess, nil
}

// session resolves a session id for a user. A session belonging to someone
// else reads as not found rather than forbidden.
func (s *CheckoutService) session(id uuid.UUID, userID string) (*checkout.Session, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.BuyerID != userID {
		return nil, domainErrors.ErrSessionNotFound
	}
	return sess, nil
}

// Get returns the session for rendering.
func (s *CheckoutService) Get(_ context.Context, id uuid.UUID, userID string) (*checkout.Session, error) {
	return s.session(id, userID)
}

// UpdateField stores one field value in the session.
func (s *CheckoutService) UpdateField(_ context.Context, id uuid.UUID, userID, field, value string) (*checkout.Session, error) {
	sess, err := s.session(id, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.UpdateField(field, value); err != nil {
		return nil, err
	}
	return sess, nil
}

// Advance validates the shipping step and moves to payment.
func (s *CheckoutService) Advance(ctx context.Context, id uuid.UUID, userID string) (*checkout.Session, error) {
	sess, err := s.session(id, userID)
	if err != nil {
		return nil, err
	}

	if err := sess.Advance(s.now()); err != nil {
		if stderrors.Is(err, domainErrors.ErrStepIncomplete) {
			s.metrics.StepValidationFailures.WithLabelValues("shipping").Inc()
			s.notifier.Error(ctx, userID, "Incomplete Form",
				"Please complete all required fields in the shipping information.")
		}
		return nil, err
	}
	return sess, nil
}

// Retreat moves back to the shipping step, keeping entered values.
func (s *CheckoutService) Retreat(_ context.Context, id uuid.UUID, userID string) (*checkout.Session, error) {
	sess, err := s.session(id, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.Retreat(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit validates the payment step and performs the transaction submission.
//
// Permission is re-checked against fresh product state right before the
// request is built: the open-time check alone would let a product sold in the
// meantime slip through to the backend.
func (s *CheckoutService) Submit(ctx context.Context, id uuid.UUID, userID, credential string) (*SubmitResult, error) {
	sess, err := s.session(id, userID)
	if err != nil {
		return nil, err
	}

	req, err := sess.BeginSubmit(s.now())
	if err != nil {
		if stderrors.Is(err, domainErrors.ErrStepIncomplete) {
			s.metrics.StepValidationFailures.WithLabelValues("payment").Inc()
			s.notifier.Error(ctx, userID, "Purchase Error",
				"Please complete all required fields and try again.")
		}
		return nil, err
	}

	prod, err := s.products.FetchProduct(ctx, sess.ProductID, credential)
	if err != nil {
		s.abortSubmit(ctx, sess, userID, "Purchase Error", "Unable to verify product availability. Please try again.")
		return nil, err
	}
	if permission := checkout.CanInitiatePurchase(prod, userID); permission != checkout.PermissionGranted {
		// The product changed hands between open and submit. The session is
		// unrecoverable; close it.
		s.metrics.PermissionDenied.WithLabelValues(string(permission)).Inc()
		if cancelErr := sess.Cancel(); cancelErr != nil {
			s.logger.Debug().Err(cancelErr).Str("session_id", sess.ID.String()).Msg("cancel after permission revocation")
		}
		s.closeSession(sess, "permission_revoked")
		s.notifier.Error(ctx, userID, "Purchase Not Available", permission.Err().Error())
		return nil, permission.Err()
	}

	start := s.now()
	txID, submitErr := s.submitter.SubmitTransaction(ctx, req, credential)
	s.metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	if submitErr != nil {
		outcome := "error"
		if stderrors.Is(submitErr, domainErrors.ErrTransactionRejected) {
			outcome = "rejected"
		}
		s.metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
		s.abortSubmit(ctx, sess, userID, "Purchase Error", "Please complete all required fields and try again.")
		return nil, submitErr
	}

	if err := sess.CompleteSubmit(); err != nil {
		// Cancelled while the call was in flight: discard the result.
		s.metrics.SubmissionsTotal.WithLabelValues("discarded").Inc()
		s.logger.Warn().
			Str("session_id", sess.ID.String()).
			Str("transaction_id", txID).
			Msg("submission completed after cancellation, result discarded")
		return nil, domainErrors.ErrSessionClosed
	}

	s.metrics.SubmissionsTotal.WithLabelValues("completed").Inc()
	s.closeSession(sess, "completed")
	s.notifier.Success(ctx, userID, successMessage, successDescription)
	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Str("product_id", sess.ProductID).
		Str("transaction_id", txID).
		Msg("purchase completed")

	return &SubmitResult{
		TransactionID: txID,
		RedirectTo:    transactionsPath,
		Message:       successMessage,
		Description:   successDescription,
	}, nil
}

// Cancel closes the session. Cancelling while a submission is in flight is
// allowed; the in-flight result is then discarded.
func (s *CheckoutService) Cancel(_ context.Context, id uuid.UUID, userID string) error {
	sess, err := s.session(id, userID)
	if err != nil {
		return err
	}
	if err := sess.Cancel(); err != nil {
		return err
	}
	s.closeSession(sess, "cancelled")
	return nil
}

// ExpireSessions drops sessions idle longer than ttl. Run periodically.
func (s *CheckoutService) ExpireSessions(ttl time.Duration) int {
	dropped := s.sessions.Expire(ttl, s.now())
	if dropped > 0 {
		s.metrics.SessionsClosed.WithLabelValues("expired").Add(float64(dropped))
		s.metrics.ActiveSessions.Sub(float64(dropped))
		s.logger.Info().Int("dropped", dropped).Msg("expired idle checkout sessions")
	}
	return dropped
}

// abortSubmit returns a mid-submission session to the payment step, keeping
// entered values, and surfaces an error notice. A session already cancelled
// mid-flight is left alone.
func (s *CheckoutService) abortSubmit(ctx context.Context, sess *checkout.Session, userID, message, description string) {
	if err := sess.FailSubmit(); err != nil {
		s.logger.Debug().Str("session_id", sess.ID.String()).Msg("submission failure after cancellation, ignored")
		return
	}
	s.notifier.Error(ctx, userID, message, description)
}

// closeSession removes a session from the registry and records why.
func (s *CheckoutService) closeSession(sess *checkout.Session, reason string) {
	s.sessions.Remove(sess.ID)
	s.metrics.SessionsClosed.WithLabelValues(reason).Inc()
	s.metrics.ActiveSessions.Dec()
}
