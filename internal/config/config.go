package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config 全局配置（启动时加载一次，按引用注入各组件，组件不得读取环境变量）
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chain   ChainConfig   `mapstructure:"chain"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Paywall PaywallConfig `mapstructure:"paywall"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ChainConfig 链上转账记录查询配置（Etherscan 风格 tokentx 接口）
type ChainConfig struct {
	APIURL         string  `mapstructure:"api_url"`
	APIKey         string  `mapstructure:"api_key"`
	ChainID        int     `mapstructure:"chain_id"`
	USDCContract   string  `mapstructure:"usdc_contract"`
	ReceiveAddress string  `mapstructure:"receive_address"`
	MinAmount      float64 `mapstructure:"min_amount"` // 最小入账金额（USDC）
}

// LedgerConfig 外部账本（Supabase REST）配置
type LedgerConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// PaywallConfig x402 付费墙配置
type PaywallConfig struct {
	FacilitatorURL string `mapstructure:"facilitator_url"`
	PayTo          string `mapstructure:"pay_to"`
	Network        string `mapstructure:"network"`
	Disabled       bool   `mapstructure:"disabled"` // 本地调试时可关闭验证
}

type LogConfig struct {
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

const (
	DefaultPort           = 3000
	DefaultChainID        = 8453 // Base 主网
	DefaultMinAmount      = 0.01
	DefaultFacilitatorURL = "https://x402.org/facilitator"
	DefaultNetwork        = "base"
)

// Load 读取配置文件并应用环境变量覆盖（密钥只通过环境变量传入，不写进代码）
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"server.port":             DefaultPort,
		"chain.chain_id":          DefaultChainID,
		"chain.min_amount":        DefaultMinAmount,
		"paywall.facilitator_url": DefaultFacilitatorURL,
		"paywall.network":         DefaultNetwork,
		// 密钥不写进配置文件，这里登记空默认值让 AutomaticEnv 能识别对应的键
		"chain.api_key":  "",
		"ledger.url":     "",
		"ledger.api_key": "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 环境变量覆盖，例如 PAYX402_LEDGER_API_KEY
	v.SetEnvPrefix("PAYX402")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("invalid server port")
	}
	if cfg.Chain.APIURL == "" {
		return errors.New("missing chain.api_url in configuration")
	}
	if cfg.Chain.USDCContract == "" {
		return errors.New("missing chain.usdc_contract in configuration")
	}
	if cfg.Chain.ReceiveAddress == "" {
		return errors.New("missing chain.receive_address in configuration")
	}
	if cfg.Chain.MinAmount < 0 {
		return errors.New("invalid chain.min_amount")
	}
	if !cfg.Paywall.Disabled && cfg.Paywall.PayTo == "" {
		return errors.New("missing paywall.pay_to in configuration")
	}
	// 账本凭证允许为空：相关接口运行时返回 not configured，而不是启动失败
	return nil
}
