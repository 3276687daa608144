package routes

import (
	"github.com/Boltflix/My-Dotts-Backend/middleware"

	"github.com/gin-gonic/gin"
)

func ProfileRoutes(r *gin.Engine, d Deps) {
	profileRoutes := r.Group("/profile")
	profileRoutes.Use(middleware.JWTAuth(d.Config.JWTSecret))
	{
		profileRoutes.GET("", d.Profile.GetProfile)
		profileRoutes.POST("/terms", d.Profile.AcceptTerms)
		profileRoutes.GET("/access", middleware.RequireTermsAccepted(d.Users), d.Profile.GetAccess)
	}
}
