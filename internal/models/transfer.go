package models

import (
	"github.com/shopspring/decimal"
)

// TokenTransfer 链上代币转账记录（tokentx 接口返回项，数值字段均为十进制字符串）
type TokenTransfer struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"` // 最小单位整数字符串
	TimeStamp       string `json:"timeStamp"`
	BlockNumber     string `json:"blockNumber"`
}

// AmountUsdc 把最小单位金额换算成 USDC；Value 非法时返回 ok=false
func (t *TokenTransfer) AmountUsdc() (decimal.Decimal, bool) {
	raw, err := decimal.NewFromString(t.Value)
	if err != nil {
		return decimal.Zero, false
	}
	return raw.Shift(-UsdcDecimals), true
}
