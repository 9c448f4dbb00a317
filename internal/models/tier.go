package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier 付费档位：支付固定 USDC 金额，获得对应 PAYX 奖励
type Tier struct {
	Name         string
	AmountUsdc   decimal.Decimal
	AmountPayx   decimal.Decimal
	AmountLabel  string // 响应中的金额展示，如 "5 USDC"
	TokensLabel  string // 响应中的奖励展示，如 "100,000 PAYX"
	Message      string // 付费墙挑战中展示的描述
	Confirmation string // 支付成功后的提示语
}

// Tiers 档位表，key 为路由参数
var Tiers = map[string]Tier{
	"test": {
		Name:         "test",
		AmountUsdc:   decimal.RequireFromString("0.01"),
		AmountPayx:   decimal.NewFromInt(50),
		AmountLabel:  "0.01 USDC",
		TokensLabel:  "50 PAYX",
		Message:      "TEST: Pay 0.01 USDC -> Get 50 PAYX tokens. Tokens will be sent to your wallet later.",
		Confirmation: "Test payment confirmed! Your PAYX tokens will be sent to your wallet soon.",
	},
	"5usdc": {
		Name:         "5usdc",
		AmountUsdc:   decimal.NewFromInt(5),
		AmountPayx:   decimal.NewFromInt(100000),
		AmountLabel:  "5 USDC",
		TokensLabel:  "100,000 PAYX",
		Message:      "Pay 5 USDC -> Get 100,000 PAYX tokens. Tokens will be sent to your wallet later.",
		Confirmation: "Payment confirmed! Your PAYX tokens will be sent to your wallet soon.",
	},
	"10usdc": {
		Name:         "10usdc",
		AmountUsdc:   decimal.NewFromInt(10),
		AmountPayx:   decimal.NewFromInt(200000),
		AmountLabel:  "10 USDC",
		TokensLabel:  "200,000 PAYX",
		Message:      "Pay 10 USDC -> Get 200,000 PAYX tokens. Tokens will be sent to your wallet later.",
		Confirmation: "Payment confirmed! Your PAYX tokens will be sent to your wallet soon.",
	},
	"100usdc": {
		Name:         "100usdc",
		AmountUsdc:   decimal.NewFromInt(100),
		AmountPayx:   decimal.NewFromInt(2000000),
		AmountLabel:  "100 USDC",
		TokensLabel:  "2,000,000 PAYX",
		Message:      "Pay 100 USDC -> Get 2,000,000 PAYX tokens (Best Value!). Tokens will be sent to your wallet later.",
		Confirmation: "Payment confirmed! Your PAYX tokens will be sent to your wallet soon.",
	},
}

// TierOrder 展示顺序（map 无序，首页与付费墙挑战按此排列）
var TierOrder = []string{"test", "5usdc", "10usdc", "100usdc"}

// TierByPaymentURL 按支付回调里的 paymentUrl 匹配档位
func TierByPaymentURL(url string) (Tier, bool) {
	for _, name := range []string{"5usdc", "10usdc", "100usdc", "test"} {
		if strings.Contains(url, "/payment/"+name) {
			return Tiers[name], true
		}
	}
	return Tier{}, false
}
