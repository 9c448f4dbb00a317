package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Supabase numeric 列按 JSON 数字收发，不加引号
	decimal.MarshalJSONWithoutQuotes = true
}

// PayxPerUsdc 固定兑换率：1 USDC = 20000 PAYX
var PayxPerUsdc = decimal.NewFromInt(20000)

// UsdcDecimals USDC 链上精度（最小单位 = 10^-6 USDC）
const UsdcDecimals = 6

// Payment 账本中的一条已确认入账记录（外部账本独占持久化，本服务只追加不修改）
type Payment struct {
	WalletAddress   string          `json:"wallet_address"`
	AmountUsdc      decimal.Decimal `json:"amount_usdc"`
	AmountPayx      decimal.Decimal `json:"amount_payx"`
	TransactionHash string          `json:"transaction_hash,omitempty"` // 手工录入的记录可能没有交易哈希
	BlockNumber     uint64          `json:"block_number,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"` // RFC3339；为空时由账本默认取插入时间
}

// PayxAmount 按固定兑换率换算 PAYX 数量
func PayxAmount(usdc decimal.Decimal) decimal.Decimal {
	return usdc.Mul(PayxPerUsdc)
}
