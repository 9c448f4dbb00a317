package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/models"
	"github.com/farcdigger/Payx402/utils"
)

var (
	// ErrNotConfigured 账本地址或凭证未配置
	ErrNotConfigured = errors.New("ledger not configured")
	// ErrDuplicate 账本唯一约束冲突（同一 transaction_hash 已存在）
	ErrDuplicate = errors.New("payment already exists")
	// ErrUpstreamStatus 账本返回非 2xx 状态
	ErrUpstreamStatus = errors.New("ledger request failed")
)

// Client 外部账本（Supabase REST payments 集合）客户端，账本只追加不修改
type Client struct {
	http   *resty.Client
	url    string
	apiKey string
	logger *zap.Logger
}

// NewClient 创建账本客户端；所有出站请求带显式超时
func NewClient(cfg config.LedgerConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   httpClient,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Configured 账本是否已配置
func (c *Client) Configured() bool {
	return c.url != "" && c.apiKey != ""
}

func (c *Client) request(ctx context.Context) *resty.Request {
	// apikey 与 Bearer 使用同一凭证（Supabase anon key）
	return c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetHeader("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) paymentsURL() string {
	return c.url + "/rest/v1/payments"
}

// Insert 追加一条账目；唯一约束冲突返回 ErrDuplicate（并发同步时据此跳过而不是重复入账）
func (c *Client) Insert(ctx context.Context, p *models.Payment) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	resp, err := c.request(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(p).
		Post(c.paymentsURL())
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusConflict {
		return ErrDuplicate
	}
	if resp.IsError() {
		c.logger.Error("账本写入失败",
			zap.Int("status", resp.StatusCode()),
			zap.String("wallet", p.WalletAddress))
		return fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return nil
}

// ExistsByHash 按交易哈希查询是否已入账
func (c *Client) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	if !c.Configured() {
		return false, ErrNotConfigured
	}

	var rows []models.Payment
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"transaction_hash": "eq." + hash,
			"select":           "transaction_hash",
			"limit":            "1",
		}).
		SetResult(&rows).
		Get(c.paymentsURL())
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return len(rows) > 0, nil
}

// ListByWallet 查询某钱包的全部账目，按入账时间倒序
func (c *Client) ListByWallet(ctx context.Context, wallet string) ([]models.Payment, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var rows []models.Payment
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"wallet_address": "eq." + utils.NormalizeAddress(wallet),
			"order":          "created_at.desc",
		}).
		SetResult(&rows).
		Get(c.paymentsURL())
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return rows, nil
}

// ListAll 查询全部账目（dashboard 用），按入账时间倒序
func (c *Client) ListAll(ctx context.Context) ([]models.Payment, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var rows []models.Payment
	resp, err := c.request(ctx).
		SetQueryParam("order", "created_at.desc").
		SetResult(&rows).
		Get(c.paymentsURL())
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return rows, nil
}

// Ping 连通性探测（readyz 和 /test-ledger 用）
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	resp, err := c.request(ctx).
		SetQueryParam("limit", "1").
		Get(c.paymentsURL())
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}
	return nil
}
