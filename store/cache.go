package store

import (
	"context"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"

	"github.com/patrickmn/go-cache"
)

// CachedStore caches customer link lookups. Links never change once written,
// so only misses and creations need to reach the database.
type CachedStore struct {
	*Store
	cache *cache.Cache
}

func NewCachedStore(s *Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store: s,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedStore) CustomerLinkByUser(ctx context.Context, userID string) (*models.CustomerLink, error) {
	if cached, found := s.cache.Get(userKey(userID)); found {
		link := cached.(models.CustomerLink)
		return &link, nil
	}
	link, err := s.Store.CustomerLinkByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.remember(link)
	return link, nil
}

func (s *CachedStore) CustomerLinkByCustomer(ctx context.Context, customerID string) (*models.CustomerLink, error) {
	if cached, found := s.cache.Get(customerKey(customerID)); found {
		link := cached.(models.CustomerLink)
		return &link, nil
	}
	link, err := s.Store.CustomerLinkByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.remember(link)
	return link, nil
}

func (s *CachedStore) CreateCustomerLink(ctx context.Context, link *models.CustomerLink) (bool, error) {
	created, err := s.Store.CreateCustomerLink(ctx, link)
	if err != nil {
		return false, err
	}
	if created {
		s.remember(link)
	}
	return created, nil
}

func (s *CachedStore) remember(link *models.CustomerLink) {
	s.cache.Set(userKey(link.UserID), *link, cache.DefaultExpiration)
	s.cache.Set(customerKey(link.CustomerID), *link, cache.DefaultExpiration)
}

func userKey(userID string) string { return "user:" + userID }

func customerKey(customerID string) string { return "customer:" + customerID }
