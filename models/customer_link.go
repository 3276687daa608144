package models

import (
	"time"
)

// CustomerLink associates a local user with its Stripe customer. Immutable once created.
type CustomerLink struct {
	UserID     string    `json:"userId" gorm:"primaryKey;type:varchar(191)"`
	CustomerID string    `json:"customerId" gorm:"type:varchar(191);uniqueIndex;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}
