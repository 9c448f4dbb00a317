package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/models"
)

// paymentRequirements x402 支付要求（402 挑战与验证请求共用）
type paymentRequirements struct {
	Scheme            string `json:"scheme"`
	Network           string `json:"network"`
	MaxAmountRequired string `json:"maxAmountRequired"` // USDC 最小单位
	Resource          string `json:"resource"`
	Description       string `json:"description"`
	MimeType          string `json:"mimeType"`
	PayTo             string `json:"payTo"`
	MaxTimeoutSeconds int    `json:"maxTimeoutSeconds"`
	Asset             string `json:"asset"`
}

type verifyRequest struct {
	X402Version         int                 `json:"x402Version"`
	PaymentHeader       string              `json:"paymentHeader"`
	PaymentRequirements paymentRequirements `json:"paymentRequirements"`
}

type verifyResponse struct {
	IsValid       bool   `json:"isValid"`
	InvalidReason string `json:"invalidReason"`
}

// Paywall x402 付费墙中间件：请求未携带支付凭证时返回 402 挑战，
// 携带时交给 facilitator 验证。协议内部的密码学校验全部在 facilitator 侧完成。
func Paywall(cfg config.PaywallConfig, asset string, logger *zap.Logger) gin.HandlerFunc {
	httpClient := resty.New().SetTimeout(10 * time.Second)

	return func(c *gin.Context) {
		if cfg.Disabled {
			c.Next()
			return
		}

		tier, ok := models.Tiers[c.Param("tier")]
		if !ok {
			// 未知档位交给 handler 返回 404
			c.Next()
			return
		}

		requirements := tierRequirements(cfg, asset, tier, c.Request.URL.Path)

		paymentHeader := c.GetHeader("X-PAYMENT")
		if paymentHeader == "" {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"x402Version": 1,
				"error":       "X-PAYMENT header is required",
				"accepts":     []paymentRequirements{requirements},
			})
			c.Abort()
			return
		}

		var verdict verifyResponse
		resp, err := httpClient.R().
			SetContext(c.Request.Context()).
			SetBody(verifyRequest{
				X402Version:         1,
				PaymentHeader:       paymentHeader,
				PaymentRequirements: requirements,
			}).
			SetResult(&verdict).
			Post(cfg.FacilitatorURL + "/verify")
		if err != nil || resp.IsError() {
			logger.Error("facilitator 验证请求失败", zap.Error(err))
			c.JSON(http.StatusPaymentRequired, gin.H{
				"x402Version": 1,
				"error":       "payment verification unavailable",
				"accepts":     []paymentRequirements{requirements},
			})
			c.Abort()
			return
		}
		if !verdict.IsValid {
			logger.Warn("支付凭证验证未通过",
				zap.String("tier", tier.Name),
				zap.String("reason", verdict.InvalidReason))
			c.JSON(http.StatusPaymentRequired, gin.H{
				"x402Version": 1,
				"error":       verdict.InvalidReason,
				"accepts":     []paymentRequirements{requirements},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func tierRequirements(cfg config.PaywallConfig, asset string, tier models.Tier, resource string) paymentRequirements {
	return paymentRequirements{
		Scheme:  "exact",
		Network: cfg.Network,
		// 换算成 USDC 最小单位（10^6）
		MaxAmountRequired: tier.AmountUsdc.Shift(models.UsdcDecimals).StringFixed(0),
		Resource:          resource,
		Description:       tier.Message,
		MimeType:          "application/json",
		PayTo:             cfg.PayTo,
		MaxTimeoutSeconds: 60,
		Asset:             asset,
	}
}
