package enums

import "slices"

// CheckoutState is a node of the checkout state machine.
type CheckoutState string

const (
	CheckoutStateIdle                  CheckoutState = "idle"
	CheckoutStateAwaitingPaymentMethod CheckoutState = "awaiting_payment_method"
	CheckoutStateAwaitingPhoneNumber   CheckoutState = "awaiting_phone_number"
	CheckoutStateSubmitting            CheckoutState = "submitting"
	CheckoutStateProviderPending       CheckoutState = "provider_pending"
	CheckoutStateSettledSuccess        CheckoutState = "settled_success"
	CheckoutStateSettledFailure        CheckoutState = "settled_failure"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateIdle,
	CheckoutStateAwaitingPaymentMethod,
	CheckoutStateAwaitingPhoneNumber,
	CheckoutStateSubmitting,
	CheckoutStateProviderPending,
	CheckoutStateSettledSuccess,
	CheckoutStateSettledFailure,
}

func (v CheckoutState) String() string { return string(v) }

func (v CheckoutState) IsValid() bool { return slices.Contains(validCheckoutStates, v) }

func ParseCheckoutState(value string) (CheckoutState, error) {
	return parseEnum(validCheckoutStates, "checkout state", value)
}

// InFlight reports whether a submit is currently being processed.
func (v CheckoutState) InFlight() bool {
	return v == CheckoutStateSubmitting || v == CheckoutStateProviderPending
}
