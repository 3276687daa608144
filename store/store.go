package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// UpsertOptions controls which columns an existing subscription row receives.
type UpsertOptions struct {
	Columns []string
	// RejectStale keeps a row whose last_event_at is newer than the incoming one.
	RejectStale bool
}

// Store persists users, customer links, subscriptions and the webhook ledger.
// Every write is a single-row statement keyed by user or event identifier.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound(err, "find user")
	}
	return &user, nil
}

func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return count > 0, nil
}

// EnsureUser inserts the user unless a row with the same ID already exists.
func (s *Store) EnsureUser(ctx context.Context, user *models.User) error {
	if user.PlanTier == "" {
		user.PlanTier = models.PlanFree
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *Store) AcceptTerms(ctx context.Context, userID string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"terms_accepted":    true,
			"terms_accepted_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("accept terms: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPlanTier(ctx context.Context, userID string, tier models.PlanTier) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("plan_tier", tier).Error
	if err != nil {
		return fmt.Errorf("set plan tier: %w", err)
	}
	return nil
}

func (s *Store) CustomerLinkByUser(ctx context.Context, userID string) (*models.CustomerLink, error) {
	var link models.CustomerLink
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&link).Error; err != nil {
		return nil, notFound(err, "find customer link by user")
	}
	return &link, nil
}

func (s *Store) CustomerLinkByCustomer(ctx context.Context, customerID string) (*models.CustomerLink, error) {
	var link models.CustomerLink
	if err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&link).Error; err != nil {
		return nil, notFound(err, "find customer link by customer")
	}
	return &link, nil
}

// CreateCustomerLink inserts link and reports whether this call created it.
// A conflict on either the user or the customer leaves the existing row untouched.
func (s *Store) CreateCustomerLink(ctx context.Context, link *models.CustomerLink) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link)
	if res.Error != nil {
		return false, fmt.Errorf("create customer link: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) SubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, notFound(err, "find subscription")
	}
	return &sub, nil
}

// UpsertSubscription inserts sub or updates opts.Columns of the existing row
// for the same user. It reports false when the stale guard rejected the write.
func (s *Store) UpsertSubscription(ctx context.Context, sub *models.Subscription, opts UpsertOptions) (bool, error) {
	columns := append([]string{}, opts.Columns...)
	columns = append(columns, "updated_at")

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
	if opts.RejectStale && sub.LastEventAt != nil {
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: `"subscriptions"."last_event_at" IS NULL OR "subscriptions"."last_event_at" <= excluded."last_event_at"`},
		}}
	}

	res := s.db.WithContext(ctx).Clauses(onConflict).Create(sub)
	if res.Error != nil {
		return false, fmt.Errorf("upsert subscription: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) WebhookEventProcessed(ctx context.Context, providerEventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("provider_event_id = ?", providerEventID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup webhook event: %w", err)
	}
	return count > 0, nil
}

func (s *Store) RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_event_id"}}, DoNothing: true}).
		Create(event).Error
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
