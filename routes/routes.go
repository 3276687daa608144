package routes

import (
	"time"

	"github.com/Boltflix/My-Dotts-Backend/config"
	"github.com/Boltflix/My-Dotts-Backend/handlers/health"
	"github.com/Boltflix/My-Dotts-Backend/handlers/payments"
	"github.com/Boltflix/My-Dotts-Backend/handlers/profile"
	"github.com/Boltflix/My-Dotts-Backend/metrics"
	"github.com/Boltflix/My-Dotts-Backend/middleware"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the handlers and shared services the router mounts.
type Deps struct {
	Config   *config.Config
	Health   *health.Handler
	Payments *payments.Handler
	Profile  *profile.Handler
	Users    middleware.UserFinder
	Metrics  *metrics.Metrics
	Limiter  *middleware.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(utils.LogWriter()), gin.Recovery())
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", d.Health.HandleHealth)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	PaymentsRoutes(r, d)
	ProfileRoutes(r, d)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
