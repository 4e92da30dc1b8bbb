package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bookverse-backend/pkg/enums"
)

// AnalyticsEvent is written once and never updated.
type AnalyticsEvent struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Type       enums.EventType `gorm:"column:type;not null;index"`
	UserID     *string         `gorm:"column:user_id;index"`
	SessionID  *string         `gorm:"column:session_id;index"`
	Metadata   map[string]any  `gorm:"column:metadata;type:jsonb;serializer:json"`
	IPAddress  string          `gorm:"column:ip_address;not null;default:'unknown'"`
	UserAgent  string          `gorm:"column:user_agent;not null;default:'unknown'"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (AnalyticsEvent) TableName() string { return "analytics_events" }
