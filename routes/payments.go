package routes

import (
	"github.com/Boltflix/My-Dotts-Backend/middleware"

	"github.com/gin-gonic/gin"
)

func PaymentsRoutes(r *gin.Engine, d Deps) {
	r.GET("/config", d.Payments.GetConfig)
	r.POST("/webhook", d.Payments.Webhook)

	sessions := r.Group("/")
	if d.Limiter != nil {
		sessions.Use(d.Limiter.Middleware())
	}
	sessions.Use(middleware.OptionalJWT(d.Config.JWTSecret))
	{
		sessions.POST("/create-checkout-session", d.Payments.CreateCheckoutSession)
		sessions.POST("/create-portal-session", d.Payments.CreatePortalSession)
	}
}
