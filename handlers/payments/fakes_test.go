package payments

import (
	"context"
	"sync"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/models"
)

type fakeReconciler struct {
	mu       sync.Mutex
	applied  []billing.Event
	result   billing.Result
	applyErr error

	customerID  string
	resolveErr  error
	lookupErr   error
	resolvedFor []string
}

func (f *fakeReconciler) Apply(ctx context.Context, event billing.Event) (billing.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return billing.Result{}, f.applyErr
	}
	f.applied = append(f.applied, event)
	return f.result, nil
}

func (f *fakeReconciler) ResolveOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolvedFor = append(f.resolvedFor, userID)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.customerID, nil
}

func (f *fakeReconciler) LookupCustomer(ctx context.Context, userID, email string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	if userID == "" && email == "" {
		return "", billing.ErrMissingIdentifier
	}
	return f.customerID, nil
}

func (f *fakeReconciler) appliedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

type fakeSessions struct {
	checkout  []billing.CheckoutParams
	portalFor string
	err       error
}

func (f *fakeSessions) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.checkout = append(f.checkout, params)
	return &billing.Session{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func (f *fakeSessions) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.portalFor = customerID
	return &billing.Session{ID: "bps_1", URL: "https://billing.stripe.test/bps_1"}, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	events   map[string]models.WebhookEvent
	readErr  error
	writeErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{events: make(map[string]models.WebhookEvent)}
}

func (f *fakeLedger) WebhookEventProcessed(ctx context.Context, providerEventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return false, f.readErr
	}
	_, ok := f.events[providerEventID]
	return ok, nil
}

func (f *fakeLedger) RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.events[event.ProviderEventID]; !ok {
		f.events[event.ProviderEventID] = *event
	}
	return nil
}

func (f *fakeLedger) outcome(providerEventID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[providerEventID]
	return e.Outcome, ok
}
