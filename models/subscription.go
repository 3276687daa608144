package models

import (
	"time"
)

type SubscriptionStatus string

// Stripe subscription statuses. Unknown values are stored as received.
const (
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionPaused            SubscriptionStatus = "paused"
)

// Tier returns premium for statuses that grant paid access.
func (s SubscriptionStatus) Tier() PlanTier {
	switch s {
	case SubscriptionActive, SubscriptionTrialing:
		return PlanPremium
	default:
		return PlanFree
	}
}

// Subscription holds the current subscription state of one user. Rows are
// never deleted; a canceled subscription keeps its history.
type Subscription struct {
	UserID           string             `json:"userId" gorm:"primaryKey;type:varchar(191)"`
	SubscriptionID   string             `json:"subscriptionId" gorm:"type:varchar(191);index"`
	CustomerID       string             `json:"customerId" gorm:"type:varchar(191);index"`
	PriceID          *string            `json:"priceId"`
	Status           SubscriptionStatus `json:"status" gorm:"type:varchar(32);not null"`
	CurrentPeriodEnd *time.Time         `json:"currentPeriodEnd"`
	LastEventAt      *time.Time         `json:"lastEventAt"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}
