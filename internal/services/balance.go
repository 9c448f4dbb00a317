package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/utils"
)

// LedgerReader 余额聚合所需的账本查询操作
type LedgerReader interface {
	ListByWallet(ctx context.Context, wallet string) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

// BalanceResult 某钱包的余额汇总
type BalanceResult struct {
	TotalPayx    decimal.Decimal  `json:"totalPayx"`
	TotalUsdc    decimal.Decimal  `json:"totalUsdc"`
	PaymentCount int              `json:"paymentCount"`
	Payments     []models.Payment `json:"payments"`
	LastPayment  *models.Payment  `json:"lastPayment,omitempty"`
}

// WalletSummary dashboard 中单个钱包的汇总
type WalletSummary struct {
	WalletAddress string           `json:"wallet_address"`
	TotalPayx     decimal.Decimal  `json:"totalPayx"`
	TotalUsdc     decimal.Decimal  `json:"totalUsdc"`
	PaymentCount  int              `json:"paymentCount"`
	Payments      []models.Payment `json:"payments"`
}

// Aggregator 余额聚合：从账本读出某钱包的全部账目并归并成总额
type Aggregator struct {
	store  LedgerReader
	logger *zap.Logger
}

func NewAggregator(store LedgerReader, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// Balance 汇总某钱包的余额；账本不可用时返回错误，由调用方决定响应
func (a *Aggregator) Balance(ctx context.Context, wallet string) (*BalanceResult, error) {
	wallet = utils.NormalizeAddress(wallet)
	payments, err := a.store.ListByWallet(ctx, wallet)
	if err != nil {
		a.logger.Error("余额查询失败", zap.String("wallet", wallet), zap.Error(err))
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	result := &BalanceResult{
		TotalPayx:    decimal.Zero,
		TotalUsdc:    decimal.Zero,
		PaymentCount: len(payments),
		Payments:     payments,
	}
	for i := range payments {
		result.TotalPayx = result.TotalPayx.Add(payments[i].AmountPayx)
		result.TotalUsdc = result.TotalUsdc.Add(payments[i].AmountUsdc)
	}
	// 账本按 created_at 倒序返回，第一条即最近一笔
	if len(payments) > 0 {
		result.LastPayment = &payments[0]
	}
	return result, nil
}

// Dashboard 全量账目按钱包分组汇总，钱包按最近入账时间排列
func (a *Aggregator) Dashboard(ctx context.Context) ([]WalletSummary, error) {
	payments, err := a.store.ListAll(ctx)
	if err != nil {
		a.logger.Error("dashboard 查询失败", zap.Error(err))
		return nil, err
	}

	index := make(map[string]int)
	summaries := []WalletSummary{}
	for _, p := range payments {
		i, ok := index[p.WalletAddress]
		if !ok {
			i = len(summaries)
			index[p.WalletAddress] = i
			summaries = append(summaries, WalletSummary{
				WalletAddress: p.WalletAddress,
				TotalPayx:     decimal.Zero,
				TotalUsdc:     decimal.Zero,
			})
		}
		summaries[i].TotalPayx = summaries[i].TotalPayx.Add(p.AmountPayx)
		summaries[i].TotalUsdc = summaries[i].TotalUsdc.Add(p.AmountUsdc)
		summaries[i].PaymentCount++
		summaries[i].Payments = append(summaries[i].Payments, p)
	}
	return summaries, nil
}
