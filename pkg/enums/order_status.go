package enums

import "slices"

// OrderStatus tracks the fulfilment side of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (v OrderStatus) String() string { return string(v) }

func (v OrderStatus) IsValid() bool { return slices.Contains(validOrderStatuses, v) }

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseEnum(validOrderStatuses, "order status", value)
}
