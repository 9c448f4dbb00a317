package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farcdigger/Payx402/internal/ledger"
	"github.com/farcdigger/Payx402/utils"
)

// respondLedgerError 账本错误统一转为结构化失败响应（保持 HTTP 200，错误放在载荷里）
func (h *Handler) respondLedgerError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, ledger.ErrNotConfigured) {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Ledger not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "error": fallback})
}

// GetBalance 查询钱包余额汇总
func (h *Handler) GetBalance(c *gin.Context) {
	wallet := utils.NormalizeAddress(c.Param("walletAddress"))
	if !utils.IsValidAddress(wallet) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid wallet address"})
		return
	}

	result, err := h.aggregator.Balance(c.Request.Context(), wallet)
	if err != nil {
		h.respondLedgerError(c, err, "Failed to fetch balance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"walletAddress": wallet,
		"totalPayx":     result.TotalPayx,
		"totalUsdc":     result.TotalUsdc,
		"paymentCount":  result.PaymentCount,
		"lastPayment":   result.LastPayment,
		"payments":      result.Payments,
	})
}

// Dashboard 全部账目按钱包分组汇总
func (h *Handler) Dashboard(c *gin.Context) {
	wallets, err := h.aggregator.Dashboard(c.Request.Context())
	if err != nil {
		h.respondLedgerError(c, err, "Failed to fetch dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"totalWallets": len(wallets),
		"wallets":      wallets,
	})
}
