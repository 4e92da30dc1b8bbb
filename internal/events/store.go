package events

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/bookverse-backend/pkg/db/models"
)

// StoreSink appends events to the analytics_events table.
type StoreSink struct {
	db *gorm.DB
}

func NewStoreSink(conn *gorm.DB) *StoreSink {
	return &StoreSink{db: conn}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Write(ctx context.Context, event Event) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("event store not configured")
	}
	row := models.AnalyticsEvent{
		ID:         event.ID,
		Type:       event.Type,
		UserID:     event.UserID,
		SessionID:  event.SessionID,
		Metadata:   event.Metadata,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		OccurredAt: event.OccurredAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}
