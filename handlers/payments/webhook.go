package payments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MaxBodyBytes = int64(65536)

const outcomeDuplicate = "duplicate"

// Webhook verifies a provider delivery and applies it. Any non-200 answer
// makes the provider redeliver the event later.
// @Summary Stripe webhook
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} map[string]interface{} "received and status"
// @Failure 400 {object} utils.Response "Signature verification failed"
// @Failure 503 {object} utils.Response "Storage unavailable"
// @Router /webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.SendError(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		utils.LogError(err, "Error reading body in Webhook")
		utils.SendError(c, http.StatusServiceUnavailable, "Unable to read request body")
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	switch {
	case errors.Is(err, billing.ErrMalformedPayload):
		utils.LogWarn(logrus.Fields{"event_id": event.ID, "event_type": event.Type, "error": err.Error()},
			"Malformed webhook payload acknowledged")
		h.metrics.ObserveWebhook(string(event.Kind), string(billing.OutcomeMalformed))
		h.received(c, string(billing.OutcomeMalformed))
		return
	case err != nil:
		utils.LogWarn(logrus.Fields{"error": err.Error()}, "Webhook signature verification failed")
		h.metrics.ObserveWebhook("unverified", "rejected")
		utils.SendError(c, http.StatusBadRequest, "Webhook signature verification failed")
		return
	}

	// Store writes must finish even if the provider hangs up.
	ctx := context.WithoutCancel(c.Request.Context())

	if event.ID != "" {
		processed, err := h.eventProcessed(ctx, event.ID)
		if err != nil {
			utils.LogError(err, "Error reading webhook ledger")
			h.metrics.ObserveWebhook(string(event.Kind), "error")
			utils.SendError(c, http.StatusServiceUnavailable, "Storage unavailable, retry later")
			return
		}
		if processed {
			utils.LogEvent(logrus.Fields{"event_id": event.ID, "event_type": event.Type}, "Duplicate webhook delivery skipped")
			h.metrics.ObserveWebhook(string(event.Kind), outcomeDuplicate)
			h.received(c, outcomeDuplicate)
			return
		}
	}

	result, err := h.reconciler.Apply(ctx, event)
	if err != nil {
		status, message := statusFor(err)
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		utils.LogError(err, "Error applying webhook event "+event.ID)
		h.metrics.ObserveWebhook(string(event.Kind), "error")
		utils.SendError(c, status, message)
		return
	}

	if event.ID != "" && result.Outcome != billing.OutcomeIgnored {
		h.recordEvent(ctx, event, result.Outcome)
	}

	h.metrics.ObserveWebhook(string(event.Kind), string(result.Outcome))
	h.received(c, string(result.Outcome))
}

func (h *Handler) received(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{"received": true, "status": status})
}

func (h *Handler) eventProcessed(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := h.storeContext(ctx)
	defer cancel()
	return h.ledger.WebhookEventProcessed(ctx, eventID)
}

// recordEvent is best effort: a missing ledger row only costs an idempotent
// re-apply on redelivery.
func (h *Handler) recordEvent(ctx context.Context, event billing.Event, outcome billing.Outcome) {
	ctx, cancel := h.storeContext(ctx)
	defer cancel()
	err := h.ledger.RecordWebhookEvent(ctx, &models.WebhookEvent{
		ID:              uuid.NewString(),
		ProviderEventID: event.ID,
		EventType:       event.Type,
		Outcome:         string(outcome),
		ProcessedAt:     time.Now().UTC(),
	})
	if err != nil {
		utils.LogWarn(logrus.Fields{"event_id": event.ID, "error": err.Error()}, "Unable to record webhook event")
	}
}
