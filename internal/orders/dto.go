package orders

import (
	"time"

	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	"github.com/angelmondragon/bookverse-backend/pkg/money"
)

// OrderItemDTO is one order line as returned to clients.
type OrderItemDTO struct {
	ItemID             string                `json:"itemId"`
	Title              string                `json:"title,omitempty"`
	Author             string                `json:"author,omitempty"`
	Mode               enums.AcquisitionMode `json:"mode"`
	Quantity           int                   `json:"quantity"`
	UnitPriceMinor     int64                 `json:"unitPriceMinor"`
	LineTotalMinor     int64                 `json:"lineTotalMinor"`
	BorrowDurationDays *int                  `json:"borrowDurationDays,omitempty"`
}

// OrderDTO is the read model for order history and the admin feed.
type OrderDTO struct {
	OrderID       string                `json:"orderId"`
	UserID        string                `json:"userId"`
	Items         []OrderItemDTO        `json:"items"`
	TotalMinor    int64                 `json:"totalMinor"`
	TotalAmount   string                `json:"totalAmount"`
	Currency      string                `json:"currency"`
	PaymentMethod enums.PaymentProvider `json:"paymentMethod"`
	PaymentStatus enums.PaymentStatus   `json:"paymentStatus"`
	Status        enums.OrderStatus     `json:"status"`
	CustomerPhone string                `json:"customerPhone"`
	TransactionID *string               `json:"transactionId,omitempty"`
	FailureReason *string               `json:"failureReason,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// ListResult is one page of a user's orders.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ToDTO maps a persisted order onto its read model.
func ToDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO(item))
	}
	currency := money.Currency(order.Currency)
	return OrderDTO{
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		Items:         items,
		TotalMinor:    order.TotalMinor,
		TotalAmount:   money.Money(order.TotalMinor).Format(currency),
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		CustomerPhone: order.CustomerPhone,
		TransactionID: order.TransactionID,
		FailureReason: order.FailureReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func toDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToDTO(row))
	}
	return out
}
