package services

import (
	"github.com/shopspring/decimal"

	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/utils"
)

// FilterIncomingTransfers 从原始转账列表中筛出真正的入账：
//   - 合约地址等于监控代币（忽略大小写）
//   - 收款方等于收款地址（忽略大小写）
//   - 付款方不是收款地址本身（排除自转）
//   - 金额不低于最小入账门槛
//
// 纯函数，保持输入顺序；金额字段非法的记录按不匹配处理，不中断筛选。
func FilterIncomingTransfers(transfers []models.TokenTransfer, asset, receiver string, minAmount decimal.Decimal) []models.TokenTransfer {
	filtered := make([]models.TokenTransfer, 0, len(transfers))
	for _, t := range transfers {
		if !utils.SameAddress(t.ContractAddress, asset) {
			continue
		}
		if !utils.SameAddress(t.To, receiver) {
			continue
		}
		if utils.SameAddress(t.From, receiver) {
			continue
		}
		amount, ok := t.AmountUsdc()
		if !ok || amount.LessThan(minAmount) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}
