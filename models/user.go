package models

import (
	"time"
)

// PlanTier est le niveau d'accès dérivé du statut d'abonnement
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPremium PlanTier = "premium"
)

// User is the local profile of an identity owned by the auth provider.
// PlanTier is denormalized from the subscription for access checks.
type User struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(191)"`
	Email           string     `json:"email" gorm:"type:varchar(255);index"`
	UserName        string     `json:"username"`
	PlanTier        PlanTier   `json:"planTier" gorm:"type:varchar(20);not null;default:'free'"`
	TermsAccepted   bool       `json:"termsAccepted" gorm:"not null;default:false"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
