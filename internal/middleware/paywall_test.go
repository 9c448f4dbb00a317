package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAsset = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"

func paywallRouter(cfg config.PaywallConfig) *gin.Engine {
	r := gin.New()
	payment := r.Group("/payment")
	payment.Use(Paywall(cfg, testAsset, zap.NewNop()))
	payment.GET("/:tier", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func paywallConfig(facilitatorURL string) config.PaywallConfig {
	return config.PaywallConfig{
		FacilitatorURL: facilitatorURL,
		PayTo:          "0xda8d766bc482a7953b72283f56c12ce00da6a86a",
		Network:        "base",
	}
}

func TestPaywallChallengeWithoutPaymentHeader(t *testing.T) {
	r := paywallRouter(paywallConfig("http://facilitator.invalid"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/5usdc", nil))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var body struct {
		X402Version int    `json:"x402Version"`
		Error       string `json:"error"`
		Accepts     []struct {
			Scheme            string `json:"scheme"`
			Network           string `json:"network"`
			MaxAmountRequired string `json:"maxAmountRequired"`
			PayTo             string `json:"payTo"`
			Asset             string `json:"asset"`
		} `json:"accepts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 1, body.X402Version)
	assert.Equal(t, "X-PAYMENT header is required", body.Error)
	require.Len(t, body.Accepts, 1)
	assert.Equal(t, "exact", body.Accepts[0].Scheme)
	assert.Equal(t, "base", body.Accepts[0].Network)
	assert.Equal(t, "5000000", body.Accepts[0].MaxAmountRequired) // 5 USDC 最小单位
	assert.Equal(t, testAsset, body.Accepts[0].Asset)
}

func TestPaywallAcceptsVerifiedPayment(t *testing.T) {
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify", r.URL.Path)

		var req verifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.X402Version)
		assert.Equal(t, "signed-payload", req.PaymentHeader)
		assert.Equal(t, "10000000", req.PaymentRequirements.MaxAmountRequired)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isValid":true}`))
	}))
	defer facilitator.Close()

	r := paywallRouter(paywallConfig(facilitator.URL))

	req := httptest.NewRequest(http.MethodGet, "/payment/10usdc", nil)
	req.Header.Set("X-PAYMENT", "signed-payload")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaywallRejectsInvalidPayment(t *testing.T) {
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isValid":false,"invalidReason":"insufficient_funds"}`))
	}))
	defer facilitator.Close()

	r := paywallRouter(paywallConfig(facilitator.URL))

	req := httptest.NewRequest(http.MethodGet, "/payment/5usdc", nil)
	req.Header.Set("X-PAYMENT", "signed-payload")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient_funds")
}

func TestPaywallFacilitatorUnreachable(t *testing.T) {
	r := paywallRouter(paywallConfig("http://127.0.0.1:1"))

	req := httptest.NewRequest(http.MethodGet, "/payment/5usdc", nil)
	req.Header.Set("X-PAYMENT", "signed-payload")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestPaywallDisabledBypassesGate(t *testing.T) {
	cfg := paywallConfig("http://facilitator.invalid")
	cfg.Disabled = true
	r := paywallRouter(cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/5usdc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaywallUnknownTierPassesThrough(t *testing.T) {
	r := paywallRouter(paywallConfig("http://facilitator.invalid"))

	// 未知档位不拦截，由 handler 决定 404
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/42usdc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
