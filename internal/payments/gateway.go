// Package payments charges mobile money wallets. Providers are opaque routing
// keys; every failure surfaces as an *Error carrying its Kind.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

// ChargeRequest asks a provider to collect Amount from the wallet at Phone.
type ChargeRequest struct {
	Provider enums.PaymentProvider
	Phone    string
	Amount   money.Money
	Currency money.Currency
	OrderID  string
}

// Receipt confirms a successful charge.
type Receipt struct {
	TransactionID string
	Provider      enums.PaymentProvider
	ProcessedAt   time.Time
}

// Gateway collects a payment. Implementations must honour ctx cancellation.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, req ChargeRequest) (Receipt, error)

func (f GatewayFunc) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	return f(ctx, req)
}

// ErrorKind classifies charge failures.
type ErrorKind string

const (
	KindDeclined            ErrorKind = "declined"
	KindTimeout             ErrorKind = "timeout"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
)

// Error is the only error type a Gateway returns.
type Error struct {
	Kind     ErrorKind
	Provider enums.PaymentProvider
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("payment %s", e.Kind)
	if e.Provider != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Provider)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Declined reports a provider rejection.
func Declined(provider enums.PaymentProvider, reason string) *Error {
	return &Error{Kind: KindDeclined, Provider: provider, Reason: reason}
}

// Unavailable reports a provider that could not be reached.
func Unavailable(provider enums.PaymentProvider, reason string, err error) *Error {
	return &Error{Kind: KindProviderUnavailable, Provider: provider, Reason: reason, Err: err}
}

// TimedOut reports a charge that exceeded its deadline.
func TimedOut(provider enums.PaymentProvider, err error) *Error {
	return &Error{Kind: KindTimeout, Provider: provider, Reason: "provider did not respond in time", Err: err}
}

// KindOf extracts the failure kind; it returns "" for nil and for errors that
// are not *Error.
func KindOf(err error) ErrorKind {
	var payErr *Error
	if errors.As(err, &payErr) {
		return payErr.Kind
	}
	return ""
}

func transactionID(provider enums.PaymentProvider, now time.Time) string {
	return fmt.Sprintf("%s%d", provider.TransactionPrefix(), now.UnixMilli())
}
