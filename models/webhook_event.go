package models

import (
	"time"
)

// WebhookEvent records a provider event that was applied successfully.
type WebhookEvent struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProviderEventID string    `json:"providerEventId" gorm:"type:varchar(191);uniqueIndex;not null"`
	EventType       string    `json:"eventType" gorm:"type:varchar(100);index"`
	Outcome         string    `json:"outcome" gorm:"type:varchar(20)"`
	ProcessedAt     time.Time `json:"processedAt"`
}
