package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/chain"
	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/ledger"
	"github.com/farcdigger/Payx402/internal/middleware"
	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/internal/services"
)

// Handler 路由层，依赖全部在启动时注入
type Handler struct {
	cfg        *config.Config
	ledger     *ledger.Client
	chain      *chain.Client
	reconciler *services.Reconciler
	aggregator *services.Aggregator
	logger     *zap.Logger
}

func New(cfg *config.Config, ledgerClient *ledger.Client, chainClient *chain.Client, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		ledger:     ledgerClient,
		chain:      chainClient,
		reconciler: services.NewReconciler(ledgerClient, logger),
		aggregator: services.NewAggregator(ledgerClient, logger),
		logger:     logger,
	}
}

// RegisterRoutes 注册所有路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// 付费档位接口由付费墙保护
	payment := r.Group("/payment")
	payment.Use(middleware.Paywall(h.cfg.Paywall, h.cfg.Chain.USDCContract, h.logger))
	payment.GET("/:tier", h.PaymentTier)

	r.GET("/balance/:walletAddress", h.GetBalance)
	r.POST("/sync-blockchain", h.SyncBlockchain)
	r.POST("/sync-all-historical", h.SyncAllHistorical)
	r.POST("/add-manual-payment", h.AddManualPayment)
	r.POST("/track-wallet", h.TrackWallet)
	r.POST("/payment-confirmation", h.PaymentConfirmation)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/test-ledger", h.TestLedger)

	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/", h.Index)
}

// Index 首页：列出档位和接口的简单说明页
func (h *Handler) Index(c *gin.Context) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>Payx402</title></head><body>")
	b.WriteString("<h1>Payx402 Payment Service</h1>")
	b.WriteString("<h2>Payment Tiers</h2><ul>")
	for _, name := range models.TierOrder {
		tier := models.Tiers[name]
		b.WriteString("<li><a href=\"/payment/" + name + "\">/payment/" + name + "</a> - " + tier.Message + "</li>")
	}
	b.WriteString("</ul><h2>Endpoints</h2><ul>")
	b.WriteString("<li>GET /balance/{wallet}</li>")
	b.WriteString("<li>POST /sync-blockchain</li>")
	b.WriteString("<li>POST /sync-all-historical</li>")
	b.WriteString("<li>GET /dashboard</li>")
	b.WriteString("</ul></body></html>")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}
