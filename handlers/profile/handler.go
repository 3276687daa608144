package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/middleware"
	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/store"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
)

type Store interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
	EnsureUser(ctx context.Context, user *models.User) error
	AcceptTerms(ctx context.Context, userID string, at time.Time) error
	SubscriptionByUser(ctx context.Context, userID string) (*models.Subscription, error)
}

type Handler struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

func New(s Store, timeout time.Duration) *Handler {
	return &Handler{store: s, timeout: timeout, now: time.Now}
}

func (h *Handler) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// GetProfile returns the authenticated user with their subscription, if any.
// @Summary Get my profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 404 {object} utils.Response "User not found"
// @Router /profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx, cancel := h.storeContext(c)
	defer cancel()

	user, err := h.store.FindUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error loading user in GetProfile")
		utils.SendError(c, http.StatusServiceUnavailable, "Error loading profile")
		return
	}

	sub, err := h.store.SubscriptionByUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.LogErrorWithUser(userID, err, "Error loading subscription in GetProfile")
		utils.SendError(c, http.StatusServiceUnavailable, "Error loading profile")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "Profile retrieved", gin.H{
		"user":         user,
		"subscription": sub,
	})
}

// AcceptTerms records that the authenticated user accepted the terms of use.
// @Summary Accept the terms of use
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /profile/terms [post]
func (h *Handler) AcceptTerms(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.store.EnsureUser(ctx, &models.User{ID: userID}); err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating user in AcceptTerms")
		utils.SendError(c, http.StatusServiceUnavailable, "Error saving terms acceptance")
		return
	}

	at := h.now().UTC()
	if err := h.store.AcceptTerms(ctx, userID, at); err != nil {
		utils.LogErrorWithUser(userID, err, "Error saving terms acceptance")
		utils.SendError(c, http.StatusServiceUnavailable, "Error saving terms acceptance")
		return
	}

	utils.LogSuccessWithUser(userID, "Terms of use accepted")
	utils.SendSuccess(c, http.StatusOK, "Terms accepted", gin.H{
		"termsAccepted":   true,
		"termsAcceptedAt": at,
	})
}

// GetAccess runs behind RequireTermsAccepted and reports the user's plan tier.
// @Summary Check access to protected content
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response "access and planTier"
// @Failure 403 {object} utils.Response "Terms of use not accepted"
// @Router /profile/access [get]
func (h *Handler) GetAccess(c *gin.Context) {
	user, ok := c.MustGet(middleware.UserKey).(*models.User)
	if !ok {
		utils.SendError(c, http.StatusInternalServerError, "User missing from context")
		return
	}
	utils.SendSuccess(c, http.StatusOK, "Access granted", gin.H{
		"access":   true,
		"planTier": user.PlanTier,
		"premium":  user.PlanTier == models.PlanPremium,
	})
}
