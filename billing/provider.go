package billing

import "context"

// Provider is the subset of the billing provider API the service uses.
type Provider interface {
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	// FindCustomerByEmail returns ErrCustomerNotFound when no customer matches.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error)
}

// Verifier checks a raw webhook body against its signature header.
type Verifier interface {
	Verify(payload []byte, signature string) (Event, error)
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	Plan       string
	// UserID is echoed back as the correlation token of checkout_completed.
	UserID     string
	SuccessURL string
	CancelURL  string
}

// Session is a provider-hosted page the client is redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
