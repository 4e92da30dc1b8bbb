package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

// Order is the append-only audit record of one checkout attempt.
type Order struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       string                `gorm:"column:order_id;not null;uniqueIndex"`
	UserID        string                `gorm:"column:user_id;not null;index"`
	Items         OrderItems            `gorm:"column:items;type:jsonb;serializer:json;not null"`
	TotalMinor    int64                 `gorm:"column:total_minor;not null"`
	Currency      string                `gorm:"column:currency;not null"`
	PaymentMethod enums.PaymentProvider `gorm:"column:payment_method;not null"`
	PaymentStatus enums.PaymentStatus   `gorm:"column:payment_status;not null;default:'pending'"`
	Status        enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	CustomerPhone string                `gorm:"column:customer_phone;not null"`
	TransactionID *string               `gorm:"column:transaction_id"`
	FailureReason *string               `gorm:"column:failure_reason"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots one cart line at order creation.
type OrderItem struct {
	ItemID             string                `json:"itemId"`
	Title              string                `json:"title,omitempty"`
	Author             string                `json:"author,omitempty"`
	Mode               enums.AcquisitionMode `json:"mode"`
	Quantity           int                   `json:"quantity"`
	UnitPriceMinor     int64                 `json:"unitPriceMinor"`
	LineTotalMinor     int64                 `json:"lineTotalMinor"`
	BorrowDurationDays *int                  `json:"borrowDurationDays,omitempty"`
}

type OrderItems []OrderItem
