package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/ledger"
	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/utils"
)

// LedgerStore 对账所需的账本操作
type LedgerStore interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Insert(ctx context.Context, p *models.Payment) error
}

// 单笔交易的对账结果状态
const (
	TxSynced  = "synced"
	TxSkipped = "skipped"
	TxFailed  = "failed"
)

// SyncedTransaction 单笔交易的对账摘要
type SyncedTransaction struct {
	Hash       string          `json:"hash"`
	From       string          `json:"from"`
	AmountUsdc decimal.Decimal `json:"amount_usdc"`
	AmountPayx decimal.Decimal `json:"amount_payx"`
	Status     string          `json:"status"`
}

// SyncResult 一次对账批次的结果
type SyncResult struct {
	Synced       int                 `json:"synced"`
	Skipped      []string            `json:"skipped"` // 已入账被跳过的交易哈希
	TotalFound   int                 `json:"totalFound"`
	Transactions []SyncedTransaction `json:"transactions"`
}

// Reconciler 入账对账：把筛选后的链上转账逐笔比对账本，只追加未入账的记录
type Reconciler struct {
	store  LedgerStore
	logger *zap.Logger
}

func NewReconciler(store LedgerStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile 按输入顺序逐笔处理。单笔失败只记日志不中断批次；
// 查重失败时按未入账处理继续尝试写入（宁可冒重复风险也不丢账），
// 写入撞唯一约束（ErrDuplicate）同样按已存在跳过。
// 注意：查重和写入不是原子操作，并发对账存在竞态，靠账本唯一约束兜底。
func (r *Reconciler) Reconcile(ctx context.Context, transfers []models.TokenTransfer) *SyncResult {
	result := &SyncResult{
		Skipped:      []string{},
		TotalFound:   len(transfers),
		Transactions: []SyncedTransaction{},
	}

	for _, t := range transfers {
		amountUsdc, ok := t.AmountUsdc()
		if !ok {
			r.logger.Warn("交易金额字段非法，跳过", zap.String("hash", t.Hash), zap.String("value", t.Value))
			continue
		}
		amountPayx := models.PayxAmount(amountUsdc)

		summary := SyncedTransaction{
			Hash:       t.Hash,
			From:       utils.NormalizeAddress(t.From),
			AmountUsdc: amountUsdc,
			AmountPayx: amountPayx,
		}

		exists, err := r.store.ExistsByHash(ctx, t.Hash)
		if err != nil {
			// 查重失败按未知处理，继续尝试写入
			r.logger.Warn("账本查重失败，继续尝试写入", zap.String("hash", t.Hash), zap.Error(err))
		} else if exists {
			summary.Status = TxSkipped
			result.Skipped = append(result.Skipped, t.Hash)
			result.Transactions = append(result.Transactions, summary)
			continue
		}

		payment := &models.Payment{
			WalletAddress:   utils.NormalizeAddress(t.From),
			AmountUsdc:      amountUsdc,
			AmountPayx:      amountPayx,
			TransactionHash: t.Hash,
			BlockNumber:     parseBlockNumber(t.BlockNumber),
			CreatedAt:       timestampToRFC3339(t.TimeStamp),
		}

		if err := r.store.Insert(ctx, payment); err != nil {
			if errors.Is(err, ledger.ErrDuplicate) {
				summary.Status = TxSkipped
				result.Skipped = append(result.Skipped, t.Hash)
				result.Transactions = append(result.Transactions, summary)
				continue
			}
			r.logger.Error("账目写入失败", zap.String("hash", t.Hash), zap.Error(err))
			summary.Status = TxFailed
			result.Transactions = append(result.Transactions, summary)
			continue
		}

		r.logger.Info("新入账",
			zap.String("hash", t.Hash),
			zap.String("wallet", payment.WalletAddress),
			zap.String("usdc", amountUsdc.String()))
		summary.Status = TxSynced
		result.Synced++
		result.Transactions = append(result.Transactions, summary)
	}

	return result
}

func parseBlockNumber(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// timestampToRFC3339 链上时间戳（Unix 秒字符串）转 RFC3339；非法时返回空串，由账本取默认时间
func timestampToRFC3339(ts string) string {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
