package enums

import "slices"

// PaymentStatus tracks the money side of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func (v PaymentStatus) String() string { return string(v) }

func (v PaymentStatus) IsValid() bool { return slices.Contains(validPaymentStatuses, v) }

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parseEnum(validPaymentStatuses, "payment status", value)
}
