package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/models"
)

var (
	// ErrNotConfigured 转账记录接口未配置
	ErrNotConfigured = errors.New("chain API not configured")
	// ErrUpstreamStatus 接口返回失败状态
	ErrUpstreamStatus = errors.New("chain API request failed")
)

// tokentx 接口响应外层；出错时 result 可能是字符串而非数组，先留原始字节再按状态解析
type tokenTxEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client 链上转账记录查询客户端（Etherscan 风格 tokentx 接口）
type Client struct {
	http    *resty.Client
	apiURL  string
	apiKey  string
	chainID int
	logger  *zap.Logger
}

func NewClient(cfg config.ChainConfig, logger *zap.Logger) *Client {
	return &Client{
		http:    resty.New().SetTimeout(15 * time.Second),
		apiURL:  cfg.APIURL,
		apiKey:  cfg.APIKey,
		chainID: cfg.ChainID,
		logger:  logger,
	}
}

// FetchTokenTransfers 拉取地址的代币转账历史，按时间倒序。
// recentOnly 为 true 时只取最近一页（100 条），否则拉全量历史。
func (c *Client) FetchTokenTransfers(ctx context.Context, address string, recentOnly bool) ([]models.TokenTransfer, error) {
	if c.apiURL == "" {
		return nil, ErrNotConfigured
	}

	params := map[string]string{
		"module":     "account",
		"action":     "tokentx",
		"address":    address,
		"startblock": "0",
		"endblock":   "99999999",
		"sort":       "desc",
		"chainid":    strconv.Itoa(c.chainID),
		"apikey":     c.apiKey,
	}
	if recentOnly {
		params["page"] = "1"
		params["offset"] = "100"
	}

	var envelope tokenTxEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&envelope).
		Get(c.apiURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode())
	}

	if envelope.Status != "1" {
		// 没有任何转账时接口也返回 status=0，属于正常的空结果
		if envelope.Message == "No transactions found" {
			return nil, nil
		}
		c.logger.Warn("tokentx 接口返回失败状态",
			zap.String("status", envelope.Status),
			zap.String("message", envelope.Message))
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, envelope.Message)
	}

	var transfers []models.TokenTransfer
	if err := json.Unmarshal(envelope.Result, &transfers); err != nil {
		return nil, fmt.Errorf("%w: unexpected result payload", ErrUpstreamStatus)
	}
	return transfers, nil
}
