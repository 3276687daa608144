package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Boltflix/My-Dotts-Backend/billing"
	"github.com/Boltflix/My-Dotts-Backend/config"
	"github.com/Boltflix/My-Dotts-Backend/metrics"
	"github.com/Boltflix/My-Dotts-Backend/middleware"
	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "whsec_test_secret"
)

type testEnv struct {
	router     *gin.Engine
	reconciler *fakeReconciler
	sessions   *fakeSessions
	ledger     *fakeLedger
	metrics    *metrics.Metrics
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		reconciler: &fakeReconciler{customerID: "cus_1", result: billing.Result{Outcome: billing.OutcomeApplied}},
		sessions:   &fakeSessions{},
		ledger:     newFakeLedger(),
		metrics:    metrics.New(),
	}
	cfg := &config.Config{
		StripePublishableKey: "pk_test_123",
		Prices:               map[string]string{"monthly": "price_m", "yearly": "price_y"},
		SuccessURL:           "https://app.test/success",
		CancelURL:            "https://app.test/pricing",
		PortalReturnURL:      "https://app.test/account",
		JWTSecret:            testJWTSecret,
	}
	h := New(Deps{
		Config:     cfg,
		Reconciler: env.reconciler,
		Sessions:   env.sessions,
		Verifier:   billing.NewStripeProvider(billing.StripeConfig{WebhookSecret: testWebhookSecret}),
		Ledger:     env.ledger,
		Metrics:    env.metrics,
	})

	r := gin.New()
	r.GET("/config", h.GetConfig)
	r.POST("/webhook", h.Webhook)
	sessions := r.Group("/", middleware.OptionalJWT(testJWTSecret))
	sessions.POST("/create-checkout-session", h.CreateCheckoutSession)
	sessions.POST("/create-portal-session", h.CreatePortalSession)
	env.router = r
	return env
}

func (env *testEnv) postJSON(path string, body interface{}, token string) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	var response utils.Response
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	return response
}

func TestGetConfig(t *testing.T) {
	env := newTestEnv()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/config", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "pk_test_123", data["publishableKey"])

	plans := data["plans"].([]interface{})
	assert.Len(t, plans, 2)
	first := plans[0].(map[string]interface{})
	assert.Equal(t, "monthly", first["plan"])
	assert.Equal(t, "price_m", first["priceId"])
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-checkout-session", gin.H{"plan": "Monthly", "userId": "user_42", "email": "a@b.test"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.True(t, response.Success)
	data := response.Data.(map[string]interface{})
	assert.Equal(t, "cs_test_1", data["sessionId"])
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", data["url"])

	if assert.Len(t, env.sessions.checkout, 1) {
		params := env.sessions.checkout[0]
		assert.Equal(t, "cus_1", params.CustomerID)
		assert.Equal(t, "price_m", params.PriceID)
		assert.Equal(t, "monthly", params.Plan)
		assert.Equal(t, "user_42", params.UserID)
		assert.Equal(t, "https://app.test/success", params.SuccessURL)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Sessions.WithLabelValues("checkout", "created")))
}

func TestCreateCheckoutSession_TokenOverridesBody(t *testing.T) {
	env := newTestEnv()
	token, err := utils.GenerateJWT(testJWTSecret, "user_from_token", 1)
	assert.NoError(t, err)

	w := env.postJSON("/create-checkout-session", gin.H{"plan": "yearly", "userId": "someone_else"}, token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user_from_token"}, env.reconciler.resolvedFor)
	assert.Equal(t, "user_from_token", env.sessions.checkout[0].UserID)
}

func TestCreateCheckoutSession_InvalidToken(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-checkout-session", gin.H{"plan": "monthly", "userId": "user_42"}, "not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, env.reconciler.resolvedFor)
}

func TestCreateCheckoutSession_UnknownPlan(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-checkout-session", gin.H{"plan": "lifetime", "userId": "user_42"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown plan", decode(t, w).Error)
	assert.Empty(t, env.reconciler.resolvedFor)
	assert.Empty(t, env.sessions.checkout)
}

func TestCreateCheckoutSession_MissingUser(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-checkout-session", gin.H{"plan": "monthly"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.reconciler.resolvedFor)
}

func TestCreateCheckoutSession_InvalidBody(t *testing.T) {
	env := newTestEnv()

	req, _ := http.NewRequest(http.MethodPost, "/create-checkout-session", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckoutSession_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		resolveErr error
		sessionErr error
		status     int
	}{
		{"store down", fmt.Errorf("%w: ensure user: timeout", billing.ErrStoreUnavailable), nil, http.StatusServiceUnavailable},
		{"provider down on customer", fmt.Errorf("%w: stripe 500", billing.ErrProviderUnavailable), nil, http.StatusBadGateway},
		{"provider down on session", nil, fmt.Errorf("%w: stripe 500", billing.ErrProviderUnavailable), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), nil, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.reconciler.resolveErr = tc.resolveErr
			env.sessions.err = tc.sessionErr

			w := env.postJSON("/create-checkout-session", gin.H{"plan": "monthly", "userId": "user_42"}, "")

			assert.Equal(t, tc.status, w.Code)
			assert.False(t, decode(t, w).Success)
		})
	}
}

func TestCreatePortalSession_Success(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-portal-session", gin.H{"email": "a@b.test"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "https://billing.stripe.test/bps_1", data["url"])
	assert.Equal(t, "cus_1", env.sessions.portalFor)
}

func TestCreatePortalSession_CustomerNotFound(t *testing.T) {
	env := newTestEnv()
	env.reconciler.lookupErr = billing.ErrCustomerNotFound

	w := env.postJSON("/create-portal-session", gin.H{"email": "nobody@b.test"}, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found", decode(t, w).Error)
	assert.Empty(t, env.sessions.portalFor)
}

func TestCreatePortalSession_MissingIdentifier(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON("/create-portal-session", gin.H{}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
