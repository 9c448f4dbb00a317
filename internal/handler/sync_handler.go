package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/chain"
	"github.com/farcdigger/Payx402/internal/services"
)

// SyncBlockchain 同步最近的链上转账并对账入库
func (h *Handler) SyncBlockchain(c *gin.Context) {
	h.runSync(c, true)
}

// SyncAllHistorical 同步全量历史转账并对账入库
func (h *Handler) SyncAllHistorical(c *gin.Context) {
	h.runSync(c, false)
}

// runSync 拉取转账记录 -> 筛选入账 -> 逐笔对账。
// 批次内逐笔顺序处理，单笔失败不回滚已入账的记录。
func (h *Handler) runSync(c *gin.Context, recentOnly bool) {
	if !h.ledger.Configured() {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Ledger not configured"})
		return
	}

	transfers, err := h.chain.FetchTokenTransfers(c.Request.Context(), h.cfg.Chain.ReceiveAddress, recentOnly)
	if err != nil {
		if errors.Is(err, chain.ErrNotConfigured) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Chain API not configured"})
			return
		}
		h.logger.Error("拉取链上转账失败", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	filtered := services.FilterIncomingTransfers(
		transfers,
		h.cfg.Chain.USDCContract,
		h.cfg.Chain.ReceiveAddress,
		decimal.NewFromFloat(h.cfg.Chain.MinAmount),
	)

	result := h.reconciler.Reconcile(c.Request.Context(), filtered)

	h.logger.Info("对账完成",
		zap.Bool("recent_only", recentOnly),
		zap.Int("fetched", len(transfers)),
		zap.Int("candidates", result.TotalFound),
		zap.Int("synced", result.Synced),
		zap.Int("skipped", len(result.Skipped)))

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"synced":       result.Synced,
		"totalFound":   result.TotalFound,
		"transactions": result.Transactions,
	})
}

// TestLedger 账本连通性检查
func (h *Handler) TestLedger(c *gin.Context) {
	if !h.ledger.Configured() {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "Ledger not configured",
			"message": "Set ledger.url and PAYX402_LEDGER_API_KEY",
		})
		return
	}

	if err := h.ledger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Ledger connection failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ledger connection successful!"})
}
