package checkout

import (
	"sync"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

// View is a point-in-time copy of a checkout session.
type View struct {
	State         enums.CheckoutState   `json:"state"`
	Provider      enums.PaymentProvider `json:"provider,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	Ready         bool                  `json:"ready"`
	OrderID       string                `json:"orderId,omitempty"`
	FailureReason string                `json:"failureReason,omitempty"`
	Result        *Result               `json:"result,omitempty"`
}

// Session is the checkout state machine for one cart owner. All transitions
// happen under mu; the gateway call itself runs outside the lock.
type Session struct {
	mu            sync.Mutex
	state         enums.CheckoutState
	provider      enums.PaymentProvider
	phone         string
	orderID       string
	failureReason string
	result        *Result
	touched       time.Time
}

func newSession(now time.Time) *Session {
	return &Session{state: enums.CheckoutStateIdle, touched: now}
}

// View returns a copy of the current session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	view := View{
		State:         s.state,
		Provider:      s.provider,
		Phone:         s.phone,
		Ready:         s.readyLocked(),
		OrderID:       s.orderID,
		FailureReason: s.failureReason,
	}
	if s.result != nil {
		result := *s.result
		view.Result = &result
	}
	return view
}

func (s *Session) readyLocked() bool {
	return s.state == enums.CheckoutStateAwaitingPhoneNumber && s.provider != "" && s.phone != ""
}

func (s *Session) inFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InFlight()
}

// open starts (or restarts) a checkout for a non-empty cart.
func (s *Session) open(now time.Time) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.InFlight() {
		return s.viewLocked(), errSubmitInFlight()
	}
	s.state = enums.CheckoutStateAwaitingPaymentMethod
	s.provider = ""
	s.phone = ""
	s.orderID = ""
	s.failureReason = ""
	s.result = nil
	s.touched = now
	return s.viewLocked(), nil
}

func (s *Session) selectProvider(provider enums.PaymentProvider, now time.Time) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state.InFlight():
		return s.viewLocked(), errSubmitInFlight()
	case s.state != enums.CheckoutStateAwaitingPaymentMethod && s.state != enums.CheckoutStateAwaitingPhoneNumber:
		return s.viewLocked(), errTransition(s.state, "select_provider")
	}
	s.provider = provider
	s.state = enums.CheckoutStateAwaitingPhoneNumber
	s.touched = now
	return s.viewLocked(), nil
}

// enterPhone stores an already normalized number.
func (s *Session) enterPhone(normalized string, now time.Time) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePhoneStepLocked(); err != nil {
		return s.viewLocked(), err
	}
	s.phone = normalized
	s.touched = now
	return s.viewLocked(), nil
}

// requirePhoneStep reports whether a phone number may be entered now.
func (s *Session) requirePhoneStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requirePhoneStepLocked()
}

func (s *Session) requirePhoneStepLocked() error {
	if s.state.InFlight() {
		return errSubmitInFlight()
	}
	if s.state != enums.CheckoutStateAwaitingPhoneNumber {
		return errTransition(s.state, "enter_phone")
	}
	return nil
}

type submission struct {
	provider enums.PaymentProvider
	phone    string
}

// beginSubmit moves a ready session into submitting. A second caller while a
// submit is in flight gets CONFLICT.
func (s *Session) beginSubmit(now time.Time) (submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.InFlight() {
		return submission{}, errSubmitInFlight()
	}
	if !s.readyLocked() {
		return submission{}, errTransition(s.state, "submit").
			WithDetails(map[string]any{"state": s.state.String(), "reason": "checkout_not_ready"})
	}
	s.state = enums.CheckoutStateSubmitting
	s.failureReason = ""
	s.touched = now
	return submission{provider: s.provider, phone: s.phone}, nil
}

// abortSubmit returns a submit that never created an order to the phone step.
func (s *Session) abortSubmit(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == enums.CheckoutStateSubmitting {
		s.state = enums.CheckoutStateAwaitingPhoneNumber
		s.touched = now
	}
}

func (s *Session) markPending(orderID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = enums.CheckoutStateProviderPending
	s.orderID = orderID
	s.touched = now
}

func (s *Session) settleSuccess(result Result, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.State = enums.CheckoutStateSettledSuccess
	s.state = enums.CheckoutStateSettledSuccess
	s.orderID = result.OrderID
	s.result = &result
	s.touched = now
}

// settleFailure records a failed attempt. settled_failure is transient: the
// session lands on awaiting_payment_method so a retry creates a new order.
func (s *Session) settleFailure(orderID, reason string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
	s.failureReason = reason
	s.result = nil
	s.state = enums.CheckoutStateAwaitingPaymentMethod
	s.touched = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func errSubmitInFlight() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "a payment is already being processed").
		WithDetails(map[string]any{"reason": "submit_in_flight"})
}

func errTransition(from enums.CheckoutState, action string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout step not allowed").
		WithDetails(map[string]any{"state": from.String(), "action": action})
}
