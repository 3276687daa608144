package payments

import (
	"net/http"
	"strings"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/middleware"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionRequest struct {
	Plan   string `json:"plan"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// requester returns the user the request acts for. A bearer token wins over
// the userId field of the body.
func (r *SessionRequest) requester(c *gin.Context) string {
	if id := middleware.UserID(c); id != "" {
		return id
	}
	return strings.TrimSpace(r.UserID)
}

type planInfo struct {
	Plan    string `json:"plan"`
	PriceID string `json:"priceId"`
}

// GetConfig exposes the publishable key and the configured plans.
// @Summary Billing configuration
// @Description Returns the Stripe publishable key and the plan to price mapping
// @Tags payments
// @Produce json
// @Success 200 {object} utils.Response
// @Router /config [get]
func (h *Handler) GetConfig(c *gin.Context) {
	plans := make([]planInfo, 0, len(h.cfg.Prices))
	for _, plan := range h.cfg.Plans() {
		price, _ := h.cfg.PriceFor(plan)
		plans = append(plans, planInfo{Plan: plan, PriceID: price})
	}
	utils.SendSuccess(c, http.StatusOK, "Billing configuration", gin.H{
		"publishableKey": h.cfg.StripePublishableKey,
		"plans":          plans,
	})
}

// CreateCheckoutSession starts a subscription checkout for a plan and returns
// the provider-hosted URL to redirect to.
// @Summary Create a Stripe Checkout session
// @Description Creates the Stripe customer on first use and starts a subscription checkout. A bearer token overrides userId.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Plan and user"
// @Success 200 {object} utils.Response "sessionId and url"
// @Failure 400 {object} utils.Response "Unknown plan or missing user"
// @Failure 429 {object} utils.Response "Too many requests"
// @Failure 502 {object} utils.Response "Billing provider unavailable"
// @Failure 503 {object} utils.Response "Storage unavailable"
// @Router /create-checkout-session [post]
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req SessionRequest
	if !utils.ValidateRequestBody(c, &req) {
		h.metrics.ObserveSession("checkout", "invalid")
		return
	}

	price, ok := h.cfg.PriceFor(req.Plan)
	if !ok {
		utils.LogWarn(logrus.Fields{"plan": req.Plan}, "Unknown plan in CreateCheckoutSession")
		h.fail(c, "checkout", "", billing.ErrUnknownPlan)
		return
	}

	userID := req.requester(c)
	if userID == "" {
		h.fail(c, "checkout", "", billing.ErrMissingIdentifier)
		return
	}

	ctx := c.Request.Context()
	customerID, err := h.reconciler.ResolveOrCreateCustomer(ctx, userID, strings.TrimSpace(req.Email))
	if err != nil {
		h.fail(c, "checkout", userID, err)
		return
	}

	session, err := h.sessions.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    price,
		Plan:       strings.ToLower(strings.TrimSpace(req.Plan)),
		UserID:     userID,
		SuccessURL: h.cfg.SuccessURL,
		CancelURL:  h.cfg.CancelURL,
	})
	if err != nil {
		h.fail(c, "checkout", userID, err)
		return
	}

	h.metrics.ObserveSession("checkout", "created")
	utils.LogSuccessWithUser(userID, "Checkout session created")
	utils.SendSuccess(c, http.StatusOK, "Checkout session created", gin.H{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}

// CreatePortalSession opens the provider's billing portal for an existing
// customer, found by user link or by email.
// @Summary Create a Stripe billing portal session
// @Tags payments
// @Accept json
// @Produce json
// @Param request body SessionRequest true "User or email"
// @Success 200 {object} utils.Response "url"
// @Failure 400 {object} utils.Response "Missing identifier"
// @Failure 404 {object} utils.Response "Customer not found"
// @Failure 502 {object} utils.Response "Billing provider unavailable"
// @Router /create-portal-session [post]
func (h *Handler) CreatePortalSession(c *gin.Context) {
	var req SessionRequest
	if !utils.ValidateRequestBody(c, &req) {
		h.metrics.ObserveSession("portal", "invalid")
		return
	}

	userID := req.requester(c)
	ctx := c.Request.Context()
	customerID, err := h.reconciler.LookupCustomer(ctx, userID, strings.TrimSpace(req.Email))
	if err != nil {
		h.fail(c, "portal", userID, err)
		return
	}

	session, err := h.sessions.CreatePortalSession(ctx, customerID, h.cfg.PortalReturnURL)
	if err != nil {
		h.fail(c, "portal", userID, err)
		return
	}

	h.metrics.ObserveSession("portal", "created")
	utils.SendSuccess(c, http.StatusOK, "Portal session created", gin.H{
		"url": session.URL,
	})
}

func (h *Handler) fail(c *gin.Context, sessionType, userID string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		utils.LogErrorWithUser(userID, err, "Error creating "+sessionType+" session")
		h.metrics.ObserveSession(sessionType, "error")
	} else {
		h.metrics.ObserveSession(sessionType, "rejected")
	}
	utils.SendError(c, status, message)
}
