package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const UserIDKey = "user_id"

func bearerToken(c *gin.Context) (string, error) {
	authHeader := strings.Trim(c.GetHeader("Authorization"), "\"' ")
	if authHeader == "" {
		return "", fmt.Errorf("Authorization header missing")
	}

	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		authHeader = "Bearer " + authHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("Invalid authorization format, expected: Bearer <token>")
	}
	return strings.Trim(parts[1], "\"' "), nil
}

func extractJwtClaims(c *gin.Context, secret string) (jwt.MapClaims, error) {
	tokenString, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := utils.DecodeJWT(secret, tokenString)
	if err != nil {
		return nil, fmt.Errorf("Invalid or expired token: %w", err)
	}
	if userID, _ := claims["user_id"].(string); userID == "" {
		return nil, fmt.Errorf("Token has no user_id claim")
	}
	return claims, nil
}

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractJwtClaims(c, secret)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(UserIDKey, claims["user_id"])
		c.Next()
	}
}

// OptionalJWT sets the user ID when a valid bearer token is present and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, err := extractJwtClaims(c, secret)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(UserIDKey, claims["user_id"])
		c.Next()
	}
}

// UserID returns the authenticated user ID, if any.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
