package billing

import (
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"
)

// EventKind is the closed set of provider events the reconciler understands.
type EventKind string

const (
	KindCheckoutCompleted   EventKind = "checkout_completed"
	KindSubscriptionCreated EventKind = "subscription_created"
	KindSubscriptionUpdated EventKind = "subscription_updated"
	KindSubscriptionDeleted EventKind = "subscription_deleted"
	// KindOther covers every provider event type not listed above.
	KindOther EventKind = "other"
)

// Event is a verified provider event decoded once at the boundary.
// Exactly one of Checkout or Subscription is set for the known kinds.
type Event struct {
	ID      string
	Kind    EventKind
	Type    string
	Created time.Time

	Checkout     *CheckoutCompleted
	Subscription *SubscriptionChange
}

// CheckoutCompleted is the payload of a finished checkout session.
type CheckoutCompleted struct {
	SessionID string
	// CorrelationToken is the local user ID sent with the checkout request.
	CorrelationToken string
	CustomerID       string
	SubscriptionID   string
}

// SubscriptionChange is the payload of a subscription created, updated or deleted event.
type SubscriptionChange struct {
	SubscriptionID   string
	CustomerID       string
	Status           models.SubscriptionStatus
	PriceID          string
	CurrentPeriodEnd *time.Time
}

// Outcome describes what Apply did with an event.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeMalformed Outcome = "malformed"
	OutcomeStale     Outcome = "stale"
)

type Result struct {
	Outcome  Outcome
	UserID   string
	PlanTier models.PlanTier
}
