package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/store"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Store is the record store the reconciler writes to.
type Store interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	EnsureUser(ctx context.Context, user *models.User) error
	SetPlanTier(ctx context.Context, userID string, tier models.PlanTier) error
	CustomerLinkByUser(ctx context.Context, userID string) (*models.CustomerLink, error)
	CustomerLinkByCustomer(ctx context.Context, customerID string) (*models.CustomerLink, error)
	CreateCustomerLink(ctx context.Context, link *models.CustomerLink) (bool, error)
	UpsertSubscription(ctx context.Context, sub *models.Subscription, opts store.UpsertOptions) (bool, error)
}

type Options struct {
	StoreTimeout    time.Duration
	ProviderTimeout time.Duration
	// RejectStaleEvents stops an older event from overwriting a newer one.
	RejectStaleEvents bool
}

var (
	// checkout_completed carries no price or period, so it must not clear them.
	checkoutColumns     = []string{"subscription_id", "customer_id", "status", "last_event_at"}
	subscriptionColumns = []string{"subscription_id", "customer_id", "price_id", "status", "current_period_end", "last_event_at"}
)

// Reconciler owns every write to customer links and subscriptions.
type Reconciler struct {
	store     Store
	provider  Provider
	opts      Options
	customers singleflight.Group
}

func NewReconciler(s Store, provider Provider, opts Options) *Reconciler {
	return &Reconciler{
		store:    s,
		provider: provider,
		opts:     opts,
	}
}

// Apply applies one verified event. Repeated delivery of an event converges
// on the same state. Only store failures are returned as errors; unknown,
// unmatched and malformed events succeed without touching the store.
func (r *Reconciler) Apply(ctx context.Context, event Event) (Result, error) {
	switch event.Kind {
	case KindCheckoutCompleted:
		return r.applyCheckout(ctx, event)
	case KindSubscriptionCreated, KindSubscriptionUpdated, KindSubscriptionDeleted:
		return r.applySubscription(ctx, event)
	default:
		utils.LogEvent(eventFields(event), "Billing event ignored")
		return Result{Outcome: OutcomeIgnored}, nil
	}
}

func (r *Reconciler) applyCheckout(ctx context.Context, event Event) (Result, error) {
	checkout := event.Checkout
	if checkout == nil || checkout.CustomerID == "" || checkout.SubscriptionID == "" {
		utils.LogWarn(eventFields(event), "Checkout event without customer or subscription")
		return Result{Outcome: OutcomeMalformed}, nil
	}

	userID := checkout.CorrelationToken
	if userID == "" {
		utils.LogWarn(eventFields(event), "Checkout event without correlation token")
		return Result{Outcome: OutcomeUnmatched}, nil
	}

	exists, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (bool, error) {
		return r.store.UserExists(ctx, userID)
	})
	if err != nil {
		return Result{}, storeErr("lookup user", err)
	}
	if !exists {
		fields := eventFields(event)
		fields["user_id"] = userID
		utils.LogWarn(fields, "Checkout event for unknown user")
		return Result{Outcome: OutcomeUnmatched, UserID: userID}, nil
	}

	link := &models.CustomerLink{UserID: userID, CustomerID: checkout.CustomerID}
	if _, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (bool, error) {
		return r.store.CreateCustomerLink(ctx, link)
	}); err != nil {
		return Result{}, storeErr("link customer", err)
	}

	sub := &models.Subscription{
		UserID:         userID,
		SubscriptionID: checkout.SubscriptionID,
		CustomerID:     checkout.CustomerID,
		Status:         models.SubscriptionActive,
		LastEventAt:    eventTime(event),
	}
	return r.persist(ctx, event, sub, checkoutColumns)
}

func (r *Reconciler) applySubscription(ctx context.Context, event Event) (Result, error) {
	change := event.Subscription
	if change == nil || change.CustomerID == "" {
		utils.LogWarn(eventFields(event), "Subscription event without customer")
		return Result{Outcome: OutcomeMalformed}, nil
	}

	link, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (*models.CustomerLink, error) {
		return r.store.CustomerLinkByCustomer(ctx, change.CustomerID)
	})
	if errors.Is(err, store.ErrNotFound) {
		fields := eventFields(event)
		fields["customer_id"] = change.CustomerID
		utils.LogWarn(fields, "Subscription event for unlinked customer")
		return Result{Outcome: OutcomeUnmatched}, nil
	}
	if err != nil {
		return Result{}, storeErr("lookup customer link", err)
	}

	status := change.Status
	if event.Kind == KindSubscriptionDeleted {
		status = models.SubscriptionCanceled
	}

	sub := &models.Subscription{
		UserID:           link.UserID,
		SubscriptionID:   change.SubscriptionID,
		CustomerID:       change.CustomerID,
		Status:           status,
		CurrentPeriodEnd: change.CurrentPeriodEnd,
		LastEventAt:      eventTime(event),
	}
	if change.PriceID != "" {
		price := change.PriceID
		sub.PriceID = &price
	}
	return r.persist(ctx, event, sub, subscriptionColumns)
}

func (r *Reconciler) persist(ctx context.Context, event Event, sub *models.Subscription, columns []string) (Result, error) {
	opts := store.UpsertOptions{Columns: columns, RejectStale: r.opts.RejectStaleEvents}
	applied, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (bool, error) {
		return r.store.UpsertSubscription(ctx, sub, opts)
	})
	if err != nil {
		return Result{}, storeErr("upsert subscription", err)
	}

	fields := eventFields(event)
	fields["user_id"] = sub.UserID
	fields["status"] = sub.Status

	if !applied {
		utils.LogWarn(fields, "Stale billing event skipped")
		return Result{Outcome: OutcomeStale, UserID: sub.UserID}, nil
	}

	tier := sub.Status.Tier()
	if _, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.store.SetPlanTier(ctx, sub.UserID, tier)
	}); err != nil {
		return Result{}, storeErr("set plan tier", err)
	}

	fields["plan_tier"] = tier
	utils.LogEvent(fields, "Billing event applied")
	return Result{Outcome: OutcomeApplied, UserID: sub.UserID, PlanTier: tier}, nil
}

// ResolveOrCreateCustomer returns the user's billing customer, creating it
// with the provider on first use. Concurrent calls for one user yield a
// single customer link; they share one call, so the first caller's email is
// the one sent to the provider. The shared call ignores caller cancellation
// and is bounded by the store and provider timeouts only.
func (r *Reconciler) ResolveOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	if userID == "" {
		return "", ErrMissingIdentifier
	}
	shared := context.WithoutCancel(ctx)
	v, err, _ := r.customers.Do(userID, func() (interface{}, error) {
		return r.resolveOrCreate(shared, userID, email)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Reconciler) resolveOrCreate(ctx context.Context, userID, email string) (string, error) {
	if _, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.store.EnsureUser(ctx, &models.User{ID: userID, Email: email})
	}); err != nil {
		return "", storeErr("ensure user", err)
	}

	link, err := r.linkByUser(ctx, userID)
	if err == nil {
		return link.CustomerID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	customerID, err := withTimeout(ctx, r.opts.ProviderTimeout, func(ctx context.Context) (string, error) {
		return r.provider.CreateCustomer(ctx, userID, email)
	})
	if err != nil {
		return "", err
	}

	created, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (bool, error) {
		return r.store.CreateCustomerLink(ctx, &models.CustomerLink{UserID: userID, CustomerID: customerID})
	})
	if err != nil {
		return "", storeErr("link customer", err)
	}
	if created {
		utils.LogSuccessWithUser(userID, "Billing customer created")
		return customerID, nil
	}

	// Another request linked the user first.
	link, err = r.linkByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("billing: re-read customer link for %s: %w", userID, err)
	}
	return link.CustomerID, nil
}

// LookupCustomer finds an existing customer by user link, then by email.
func (r *Reconciler) LookupCustomer(ctx context.Context, userID, email string) (string, error) {
	if userID == "" && email == "" {
		return "", ErrMissingIdentifier
	}
	if userID != "" {
		link, err := r.linkByUser(ctx, userID)
		if err == nil {
			return link.CustomerID, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
	}
	if email == "" {
		return "", ErrCustomerNotFound
	}
	return withTimeout(ctx, r.opts.ProviderTimeout, func(ctx context.Context) (string, error) {
		return r.provider.FindCustomerByEmail(ctx, email)
	})
}

func (r *Reconciler) linkByUser(ctx context.Context, userID string) (*models.CustomerLink, error) {
	link, err := withTimeout(ctx, r.opts.StoreTimeout, func(ctx context.Context) (*models.CustomerLink, error) {
		return r.store.CustomerLinkByUser(ctx, userID)
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr("lookup customer link", err)
	}
	return link, err
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func eventTime(event Event) *time.Time {
	if event.Created.IsZero() {
		return nil
	}
	t := event.Created
	return &t
}

func eventFields(event Event) logrus.Fields {
	return logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"kind":       event.Kind,
	}
}
