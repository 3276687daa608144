package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/config"
	"github.com/Boltflix/My-Dotts-Backend/metrics"
	"github.com/Boltflix/My-Dotts-Backend/models"
)

// Reconciler is the part of billing.Reconciler the HTTP layer drives.
type Reconciler interface {
	Apply(ctx context.Context, event billing.Event) (billing.Result, error)
	ResolveOrCreateCustomer(ctx context.Context, userID, email string) (string, error)
	LookupCustomer(ctx context.Context, userID, email string) (string, error)
}

type Sessions interface {
	CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.Session, error)
}

// Ledger records webhook deliveries that were handled successfully.
type Ledger interface {
	WebhookEventProcessed(ctx context.Context, providerEventID string) (bool, error)
	RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error
}

type Deps struct {
	Config     *config.Config
	Reconciler Reconciler
	Sessions   Sessions
	Verifier   billing.Verifier
	Ledger     Ledger
	Metrics    *metrics.Metrics
}

type Handler struct {
	cfg        *config.Config
	reconciler Reconciler
	sessions   Sessions
	verifier   billing.Verifier
	ledger     Ledger
	metrics    *metrics.Metrics
}

func New(d Deps) *Handler {
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Handler{
		cfg:        d.Config,
		reconciler: d.Reconciler,
		sessions:   d.Sessions,
		verifier:   d.Verifier,
		ledger:     d.Ledger,
		metrics:    m,
	}
}

func (h *Handler) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.StoreTimeout)
}

// statusFor maps billing errors to HTTP status codes and client messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, billing.ErrUnknownPlan):
		return http.StatusBadRequest, "Unknown plan"
	case errors.Is(err, billing.ErrMissingIdentifier):
		return http.StatusBadRequest, "userId or email is required"
	case errors.Is(err, billing.ErrCustomerNotFound):
		return http.StatusNotFound, "Customer not found"
	case errors.Is(err, billing.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Storage unavailable, retry later"
	case errors.Is(err, billing.ErrProviderUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, "Billing provider unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
