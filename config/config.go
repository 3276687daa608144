package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingSetting = errors.New("missing required setting")

// Config holds everything the service reads from the environment.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	DatabaseURL  string
	StoreTimeout time.Duration

	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string
	StripeAPIURL         string
	ProviderTimeout      time.Duration
	// Prices maps a plan selector (e.g. "monthly") to a Stripe price ID.
	Prices map[string]string

	SuccessURL      string
	CancelURL       string
	PortalReturnURL string

	JWTSecret          string
	CORSOrigins        []string
	RateLimitPerMinute int
	RejectStaleEvents  bool
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              os.Getenv("LOG_FILE"),
		DatabaseURL:          os.Getenv("DB_URL"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAPIURL:         os.Getenv("STRIPE_API_URL"),
		SuccessURL:           getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:            getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/pricing"),
		PortalReturnURL:      getEnv("PORTAL_RETURN_URL", "http://localhost:3000/account"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.RejectStaleEvents, err = getBool("REJECT_STALE_EVENTS", false); err != nil {
		return nil, err
	}
	if cfg.Prices, err = ParsePrices(os.Getenv("STRIPE_PRICES")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first missing setting the service cannot start without.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DB_URL", c.DatabaseURL},
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
		{"JWT_SECRET", c.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, r.name)
		}
	}
	if len(c.Prices) == 0 {
		return fmt.Errorf("%w: STRIPE_PRICES", ErrMissingSetting)
	}
	return nil
}

// PriceFor returns the Stripe price configured for plan.
func (c *Config) PriceFor(plan string) (string, bool) {
	price, ok := c.Prices[strings.ToLower(strings.TrimSpace(plan))]
	return price, ok && price != ""
}

// Plans lists the configured plan selectors in a stable order.
func (c *Config) Plans() []string {
	plans := make([]string, 0, len(c.Prices))
	for plan := range c.Prices {
		plans = append(plans, plan)
	}
	sort.Strings(plans)
	return plans
}

// ParsePrices parses "monthly=price_123,yearly=price_456".
func ParsePrices(raw string) (map[string]string, error) {
	prices := make(map[string]string)
	for _, entry := range splitList(raw) {
		plan, price, ok := strings.Cut(entry, "=")
		plan = strings.ToLower(strings.TrimSpace(plan))
		price = strings.TrimSpace(price)
		if !ok || plan == "" || price == "" {
			return nil, fmt.Errorf("invalid STRIPE_PRICES entry %q, expected plan=price_id", entry)
		}
		prices[plan] = price
	}
	return prices, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
