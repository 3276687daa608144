package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Boltflix/My-Dotts-Backend/models"
	"github.com/Boltflix/My-Dotts-Backend/store"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
)

const UserKey = "user"

type UserFinder interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
}

// RequireTermsAccepted blocks users who have not accepted the terms of use.
// It must run after JWTAuth and stores the loaded user under UserKey.
func RequireTermsAccepted(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		user, err := users.FindUser(c.Request.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			utils.AbortWithError(c, http.StatusForbidden, "Terms of use not accepted")
			return
		}
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Error loading user in RequireTermsAccepted")
			utils.AbortWithError(c, http.StatusServiceUnavailable, "Error loading user")
			return
		}
		if !user.TermsAccepted {
			utils.AbortWithError(c, http.StatusForbidden, "Terms of use not accepted")
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}
