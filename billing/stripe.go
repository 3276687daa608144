package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds what the Stripe client needs. APIURL overrides the
// API host and is only set in tests.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	APIURL        string
}

// StripeProvider implements Provider and Verifier with its own API client,
// so nothing depends on the package-level stripe.Key.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		LeveledLogger: utils.Logger,
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, stripe.NewBackendsWithConfig(backendConfig))

	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateCustomer is keyed on the user ID so a retried or concurrent call
// returns the same Stripe customer.
func (p *StripeProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)
	params.SetIdempotencyKey("customer-" + userID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create customer: %w", ErrProviderUnavailable, err)
	}
	return c.ID, nil
}

func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := p.api.Customers.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("%w: search customer: %w", ErrProviderUnavailable, err)
	}
	return "", ErrCustomerNotFound
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(in.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": in.UserID, "plan": in.Plan},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", in.UserID)
	params.AddMetadata("plan", in.Plan)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %w", ErrProviderUnavailable, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create portal session: %w", ErrProviderUnavailable, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// Verify checks the signature over the unmodified body and decodes the event.
// A verified event whose object cannot be decoded is returned together with
// ErrMalformedPayload.
func (p *StripeProvider) Verify(payload []byte, signature string) (Event, error) {
	if strings.TrimSpace(signature) == "" {
		return Event{}, fmt.Errorf("%w: missing signature", ErrVerification)
	}
	se, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	return DecodeStripeEvent(se)
}

// DecodeStripeEvent maps a Stripe event onto the closed Event union.
func DecodeStripeEvent(se stripe.Event) (Event, error) {
	event := Event{
		ID:   se.ID,
		Type: string(se.Type),
		Kind: KindOther,
	}
	if se.Created > 0 {
		event.Created = time.Unix(se.Created, 0).UTC()
	}

	var raw json.RawMessage
	if se.Data != nil {
		raw = se.Data.Raw
	}

	switch se.Type {
	case "checkout.session.completed":
		event.Kind = KindCheckoutCompleted
		var session checkoutSessionObject
		if err := json.Unmarshal(raw, &session); err != nil {
			return event, fmt.Errorf("%w: checkout session: %w", ErrMalformedPayload, err)
		}
		event.Checkout = session.toCheckout()
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		event.Kind = subscriptionKinds[string(se.Type)]
		var sub subscriptionObject
		if err := json.Unmarshal(raw, &sub); err != nil {
			return event, fmt.Errorf("%w: subscription: %w", ErrMalformedPayload, err)
		}
		event.Subscription = sub.toChange()
	}
	return event, nil
}

var subscriptionKinds = map[string]EventKind{
	"customer.subscription.created": KindSubscriptionCreated,
	"customer.subscription.updated": KindSubscriptionUpdated,
	"customer.subscription.deleted": KindSubscriptionDeleted,
}

// expandableID accepts either an ID string or an expanded object with an id.
type expandableID string

func (e *expandableID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = ""
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*e = expandableID(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

type checkoutSessionObject struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Customer          expandableID      `json:"customer"`
	Subscription      expandableID      `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

func (s checkoutSessionObject) toCheckout() *CheckoutCompleted {
	token := strings.TrimSpace(s.ClientReferenceID)
	if token == "" {
		token = strings.TrimSpace(s.Metadata["user_id"])
	}
	return &CheckoutCompleted{
		SessionID:        s.ID,
		CorrelationToken: token,
		CustomerID:       string(s.Customer),
		SubscriptionID:   string(s.Subscription),
	}
}

type subscriptionObject struct {
	ID               string       `json:"id"`
	Customer         expandableID `json:"customer"`
	Status           string       `json:"status"`
	CurrentPeriodEnd int64        `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (s subscriptionObject) toChange() *SubscriptionChange {
	change := &SubscriptionChange{
		SubscriptionID: s.ID,
		CustomerID:     string(s.Customer),
		Status:         models.SubscriptionStatus(s.Status),
	}
	periodEnd := s.CurrentPeriodEnd
	if len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		change.PriceID = item.Price.ID
		// Newer API versions only report the period on items.
		if periodEnd == 0 {
			periodEnd = item.CurrentPeriodEnd
		}
	}
	if periodEnd > 0 {
		t := time.Unix(periodEnd, 0).UTC()
		change.CurrentPeriodEnd = &t
	}
	return change
}
