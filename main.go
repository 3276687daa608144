package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/config"
	"github.com/Boltflix/My-Dotts-Backend/db"
	_ "github.com/Boltflix/My-Dotts-Backend/docs"
	"github.com/Boltflix/My-Dotts-Backend/handlers/health"
	"github.com/Boltflix/My-Dotts-Backend/handlers/payments"
	"github.com/Boltflix/My-Dotts-Backend/handlers/profile"
	"github.com/Boltflix/My-Dotts-Backend/metrics"
	"github.com/Boltflix/My-Dotts-Backend/middleware"
	"github.com/Boltflix/My-Dotts-Backend/routes"
	"github.com/Boltflix/My-Dotts-Backend/store"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	customerLinkTTL  = 30 * time.Minute
	limiterIdleAfter = 10 * time.Minute
)

// @title My Dotts Billing API
// @version 1.0
// @description Stripe subscription billing backend
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Entrez le JWT avec le préfixe Bearer: Bearer <JWT>
func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		utils.Logger.Fatalf("Invalid configuration: %v", err)
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		utils.Logger.Fatalf("Unable to configure logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		utils.Logger.Fatalf("Invalid configuration: %v", err)
	}

	gdb, err := db.Open(cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		utils.Logger.Fatalf("Database initialisation failed: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		utils.Logger.Fatalf("Database handle unavailable: %v", err)
	}
	defer sqlDB.Close()

	st := store.NewCachedStore(store.New(gdb), customerLinkTTL)
	provider := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Timeout:       cfg.ProviderTimeout,
		APIURL:        cfg.StripeAPIURL,
	})
	reconciler := billing.NewReconciler(st, provider, billing.Options{
		StoreTimeout:      cfg.StoreTimeout,
		ProviderTimeout:   cfg.ProviderTimeout,
		RejectStaleEvents: cfg.RejectStaleEvents,
	})
	m := metrics.New()
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	r := routes.SetupRouter(routes.Deps{
		Config: cfg,
		Health: health.New(sqlDB, cfg.StoreTimeout),
		Payments: payments.New(payments.Deps{
			Config:     cfg,
			Reconciler: reconciler,
			Sessions:   provider,
			Verifier:   provider,
			Ledger:     st,
			Metrics:    m,
		}),
		Profile: profile.New(st, cfg.StoreTimeout),
		Users:   st,
		Metrics: m,
		Limiter: limiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(limiterIdleAfter)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune(limiterIdleAfter)
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server listening on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Graceful shutdown failed")
	}
}
