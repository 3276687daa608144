package billing

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/store"
)

// memoryStore mirrors the uniqueness and upsert semantics of store.Store.
type memoryStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	links         map[string]models.CustomerLink
	subscriptions map[string]models.Subscription
	writes        int
	failWith      error
}

func newMemoryStore(userIDs ...string) *memoryStore {
	s := &memoryStore{
		users:         make(map[string]*models.User),
		links:         make(map[string]models.CustomerLink),
		subscriptions: make(map[string]models.Subscription),
	}
	for _, id := range userIDs {
		s.users[id] = &models.User{ID: id, PlanTier: models.PlanFree}
	}
	return s
}

func (s *memoryStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	_, ok := s.users[userID]
	return ok, nil
}

func (s *memoryStore) EnsureUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[user.ID]; !ok {
		u := *user
		u.PlanTier = models.PlanFree
		s.users[user.ID] = &u
	}
	return nil
}

func (s *memoryStore) SetPlanTier(ctx context.Context, userID string, tier models.PlanTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if u, ok := s.users[userID]; ok {
		u.PlanTier = tier
		s.writes++
	}
	return nil
}

func (s *memoryStore) CustomerLinkByUser(ctx context.Context, userID string) (*models.CustomerLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	link, ok := s.links[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &link, nil
}

func (s *memoryStore) CustomerLinkByCustomer(ctx context.Context, customerID string) (*models.CustomerLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, link := range s.links {
		if link.CustomerID == customerID {
			l := link
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memoryStore) CreateCustomerLink(ctx context.Context, link *models.CustomerLink) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if _, ok := s.links[link.UserID]; ok {
		return false, nil
	}
	for _, existing := range s.links {
		if existing.CustomerID == link.CustomerID {
			return false, nil
		}
	}
	s.links[link.UserID] = *link
	s.writes++
	return true, nil
}

func (s *memoryStore) UpsertSubscription(ctx context.Context, sub *models.Subscription, opts store.UpsertOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	existing, ok := s.subscriptions[sub.UserID]
	if !ok {
		s.subscriptions[sub.UserID] = *sub
		s.writes++
		return true, nil
	}
	if opts.RejectStale && sub.LastEventAt != nil && existing.LastEventAt != nil &&
		existing.LastEventAt.After(*sub.LastEventAt) {
		return false, nil
	}
	for _, column := range opts.Columns {
		switch column {
		case "subscription_id":
			existing.SubscriptionID = sub.SubscriptionID
		case "customer_id":
			existing.CustomerID = sub.CustomerID
		case "price_id":
			existing.PriceID = sub.PriceID
		case "status":
			existing.Status = sub.Status
		case "current_period_end":
			existing.CurrentPeriodEnd = sub.CurrentPeriodEnd
		case "last_event_at":
			existing.LastEventAt = sub.LastEventAt
		default:
			panic(fmt.Sprintf("unexpected column %q", column))
		}
	}
	s.subscriptions[sub.UserID] = existing
	s.writes++
	return true, nil
}

func (s *memoryStore) subscription(userID string) (models.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[userID]
	return sub, ok
}

func (s *memoryStore) tier(userID string) models.PlanTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.PlanTier
	}
	return ""
}

func (s *memoryStore) linkCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.links {
		if id == userID {
			n++
		}
	}
	return n
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeProvider struct {
	created   atomic.Int64
	delay     time.Duration
	byEmail   map[string]string
	createErr error
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.delay):
		}
	}
	n := p.created.Add(1)
	return fmt.Sprintf("cus_%d", n), nil
}

func (p *fakeProvider) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	if id, ok := p.byEmail[email]; ok {
		return id, nil
	}
	return "", ErrCustomerNotFound
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error) {
	return &Session{ID: "cs_test", URL: "https://checkout.stripe.test/cs_test"}, nil
}

func (p *fakeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error) {
	return &Session{ID: "bps_test", URL: "https://billing.stripe.test/bps_test"}, nil
}
