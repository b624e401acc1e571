package checkout

import (
	"sync"
	"time"

	"github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/transaction"
	"github.com/google/uuid"
)

// State represents the checkout session position in the wizard state machine.
type State string

const (
	StateShipping   State = "shipping"
	StatePayment    State = "payment"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Session is the ephemeral record of one in-progress purchase: wizard
// position, collected field values and per-field validation errors. It is
// exclusively owned by one checkout interaction; the mutex only backs up that
// single-owner discipline against concurrent HTTP requests on the same id.
type Session struct {
	ID        uuid.UUID
	ProductID string
	BuyerID   string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu          sync.Mutex
	state       State
	fields      map[string]string
	fieldErrors map[string]string
}

// NewSession opens a session at the shipping step with empty field and error
// maps. The permission gate must have passed before this is called.
func NewSession(productID, buyerID string) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.New(),
		ProductID:   productID,
		BuyerID:     buyerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		state:       StateShipping,
		fields:      make(map[string]string),
		fieldErrors: make(map[string]string),
	}
}

// State returns the current wizard state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fields returns a copy of the collected field values.
func (s *Session) Fields() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// FieldErrors returns a copy of the field-to-error mapping from the last
// failed advance or submit attempt.
func (s *Session) FieldErrors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		out[k] = v
	}
	return out
}

// Snapshot is a consistent read-only copy of the session for rendering.
type Snapshot struct {
	ID          uuid.UUID
	ProductID   string
	State       State
	Fields      map[string]string
	FieldErrors map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot captures the session under one lock acquisition.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		fields[k] = v
	}
	fieldErrors := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		fieldErrors[k] = v
	}
	return Snapshot{
		ID:          s.ID,
		ProductID:   s.ProductID,
		State:       s.state,
		Fields:      fields,
		FieldErrors: fieldErrors,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.UpdatedAt) > ttl
}

// canTransitionTo checks the transition table. Callers hold s.mu.
func (s *Session) canTransitionTo(next State) bool {
	transitions := map[State][]State{
		StateShipping:   {StatePayment, StateCancelled},
		StatePayment:    {StateShipping, StateSubmitting, StateCancelled},
		StateSubmitting: {StateCompleted, StatePayment, StateCancelled},
		StateCompleted:  {}, // Terminal state
		StateCancelled:  {}, // Terminal state
	}

	for _, allowed := range transitions[s.state] {
		if allowed == next {
			return true
		}
	}
	return false
}

// transitionTo moves the session to the next state. Callers hold s.mu.
func (s *Session) transitionTo(next State) error {
	if !s.canTransitionTo(next) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(s.state)+" to "+string(next),
			errors.ErrInvalidStateTransition,
		)
	}
	s.state = next
	s.UpdatedAt = time.Now()
	return nil
}

// UpdateField stores a field value without validating it; validation happens
// at the next advance or submit attempt. Rejected once a submission is in
// flight or the session has closed.
func (s *Session) UpdateField(name, value string) error {
	if !KnownField(name) {
		return errors.ErrUnknownField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state.IsTerminal():
		return errors.ErrSessionClosed
	case s.state == StateSubmitting:
		return errors.ErrSubmitInFlight
	}

	s.fields[name] = value
	s.UpdatedAt = time.Now()
	return nil
}

// Advance moves from the shipping step to the payment step. All shipping
// fields are validated together; if any fails the session stays put, every
// failing field gets an error message and ErrStepIncomplete is returned so
// the caller can surface a single aggregate notice.
func (s *Session) Advance(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return errors.ErrSubmitInFlight
	}
	if s.state != StateShipping {
		return errors.NewDomainError(
			"invalid_transition",
			"advance is only valid from the shipping step",
			errors.ErrInvalidStateTransition,
		)
	}

	failures := validateStep(Steps[0], s.fields, now)
	if len(failures) > 0 {
		s.fieldErrors = failures
		return errors.ErrStepIncomplete
	}

	s.fieldErrors = make(map[string]string)
	return s.transitionTo(StatePayment)
}

// Retreat moves back from the payment step to shipping. Entered values are
// kept and nothing is re-validated.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return errors.ErrSubmitInFlight
	}
	if s.state != StatePayment {
		return errors.NewDomainError(
			"invalid_transition",
			"retreat is only valid from the payment step",
			errors.ErrInvalidStateTransition,
		)
	}

	return s.transitionTo(StateShipping)
}

// BeginSubmit validates the payment step and, if it passes, moves to
// Submitting and returns the transaction request built from the full session.
// While Submitting every other operation is rejected, which is what prevents
// a double submit from rapid repeated clicks.
func (s *Session) BeginSubmit(now time.Time) (*transaction.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return nil, errors.ErrSubmitInFlight
	}
	if s.state != StatePayment {
		return nil, errors.NewDomainError(
			"invalid_transition",
			"submit is only valid from the payment step",
			errors.ErrInvalidStateTransition,
		)
	}

	failures := validateStep(Steps[1], s.fields, now)
	if len(failures) > 0 {
		s.fieldErrors = failures
		return nil, errors.ErrStepIncomplete
	}

	s.fieldErrors = make(map[string]string)
	if err := s.transitionTo(StateSubmitting); err != nil {
		return nil, err
	}

	return &transaction.Request{
		ProductID: s.ProductID,
		BuyerID:   s.BuyerID,
		ShippingDetails: transaction.ShippingDetails{
			Address:    s.fields[FieldAddress],
			PostalCode: s.fields[FieldPostalCode],
			Country:    s.fields[FieldCountry],
		},
		CardDetails: transaction.CardDetails{
			Number: s.fields[FieldCardNumber],
			Expiry: s.fields[FieldExpiry],
			CVV:    s.fields[FieldCVV],
		},
	}, nil
}

// CompleteSubmit records a successful submission. If the session was
// cancelled while the call was in flight the result is discarded: the state
// is left untouched and ErrSessionClosed is returned.
func (s *Session) CompleteSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCancelled {
		return errors.ErrSessionClosed
	}
	return s.transitionTo(StateCompleted)
}

// FailSubmit returns the session to the payment step after a failed
// submission. No field errors are set; the failure is surfaced as a single
// submission error and all entered values stay in place for a retry. A
// cancellation that happened mid-flight wins: the result is discarded.
func (s *Session) FailSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCancelled {
		return errors.ErrSessionClosed
	}
	return s.transitionTo(StatePayment)
}

// Cancel closes the session from any non-terminal state, including while a
// submission is outstanding; the in-flight result will then be discarded.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsTerminal() {
		return errors.ErrSessionClosed
	}
	return s.transitionTo(StateCancelled)
}
