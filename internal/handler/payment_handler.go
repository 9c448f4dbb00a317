package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/utils"
)

// PaymentTier 付费档位接口。付费墙中间件放行后乐观入账：
// 不等链上确认，直接按档位金额记一笔（无交易哈希）。
// 入账失败只记日志，不影响给调用方的成功响应。
func (h *Handler) PaymentTier(c *gin.Context) {
	tier, ok := models.Tiers[c.Param("tier")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment tier"})
		return
	}

	wallet := utils.NormalizeAddress(c.Query("wallet"))
	if wallet != "" && !utils.IsValidAddress(wallet) {
		h.logger.Warn("忽略非法钱包地址", zap.String("wallet", wallet), zap.String("tier", tier.Name))
		wallet = ""
	}
	if wallet != "" && h.ledger.Configured() {
		payment := &models.Payment{
			WalletAddress: wallet,
			AmountUsdc:    tier.AmountUsdc,
			AmountPayx:    tier.AmountPayx,
		}
		if err := h.ledger.Insert(c.Request.Context(), payment); err != nil {
			h.logger.Error("乐观入账失败", zap.String("tier", tier.Name), zap.Error(err))
		} else {
			h.logger.Info("乐观入账", zap.String("tier", tier.Name), zap.String("wallet", payment.WalletAddress))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": tier.Confirmation,
		"payment": gin.H{
			"amount": tier.AmountLabel,
			"tokens": tier.TokensLabel,
			"status": "Payment recorded - Tokens will be distributed later",
		},
	})
}

// TrackWallet 记录支付会话的钱包地址（仅日志）
func (h *Handler) TrackWallet(c *gin.Context) {
	var req struct {
		Wallet      string `json:"wallet" binding:"required"`
		PaymentURL  string `json:"paymentUrl"`
		PaymentType string `json:"paymentType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.logger.Info("跟踪支付会话钱包",
		zap.String("wallet", req.Wallet),
		zap.String("payment_url", req.PaymentURL),
		zap.String("payment_type", req.PaymentType))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Wallet address tracked"})
}

// PaymentConfirmation 前端支付确认回调：按 paymentUrl 匹配档位并入账
func (h *Handler) PaymentConfirmation(c *gin.Context) {
	var req struct {
		Wallet      string `json:"wallet"`
		PaymentURL  string `json:"paymentUrl" binding:"required"`
		PaymentType string `json:"paymentType"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.logger.Info("收到支付确认",
		zap.String("wallet", req.Wallet),
		zap.String("payment_url", req.PaymentURL),
		zap.String("status", req.Status))

	tier, ok := models.TierByPaymentURL(req.PaymentURL)
	wallet := utils.NormalizeAddress(req.Wallet)
	if !ok || !utils.IsValidAddress(wallet) || !h.ledger.Configured() {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment confirmation received"})
		return
	}

	payment := &models.Payment{
		WalletAddress: wallet,
		AmountUsdc:    tier.AmountUsdc,
		AmountPayx:    tier.AmountPayx,
	}
	if err := h.ledger.Insert(c.Request.Context(), payment); err != nil {
		h.logger.Error("支付确认入账失败", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment recorded successfully"})
}

// AddManualPayment 手工补录一条账目；amount_payx 缺省时按固定兑换率推导
func (h *Handler) AddManualPayment(c *gin.Context) {
	var req struct {
		WalletAddress   string          `json:"wallet_address" binding:"required"`
		AmountUsdc      decimal.Decimal `json:"amount_usdc" binding:"required"`
		AmountPayx      decimal.Decimal `json:"amount_payx"`
		TransactionHash string          `json:"transaction_hash"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request: " + err.Error()})
		return
	}
	wallet := utils.NormalizeAddress(req.WalletAddress)
	if !utils.IsValidAddress(wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid wallet address"})
		return
	}
	if req.AmountUsdc.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid amount"})
		return
	}

	amountPayx := req.AmountPayx
	if amountPayx.IsZero() {
		amountPayx = models.PayxAmount(req.AmountUsdc)
	}

	payment := &models.Payment{
		WalletAddress:   wallet,
		AmountUsdc:      req.AmountUsdc,
		AmountPayx:      amountPayx,
		TransactionHash: req.TransactionHash,
	}

	if err := h.ledger.Insert(c.Request.Context(), payment); err != nil {
		h.respondLedgerError(c, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}
