package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farcdigger/Payx402/internal/chain"
	"github.com/farcdigger/Payx402/internal/config"
	"github.com/farcdigger/Payx402/internal/handler"
	"github.com/farcdigger/Payx402/internal/ledger"
	"github.com/farcdigger/Payx402/internal/middleware"
	"github.com/farcdigger/Payx402/utils"
)

func main() {
	// 读取配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("读取配置失败:", err)
	}

	logger := utils.NewLogger(utils.LogConfig{
		File:        cfg.Log.File,
		Development: cfg.Log.Development,
	})
	defer logger.Sync()

	// 初始化外部客户端
	ledgerClient := ledger.NewClient(cfg.Ledger, logger)
	chainClient := chain.NewClient(cfg.Chain, logger)

	if !ledgerClient.Configured() {
		logger.Warn("账本凭证未配置，入账相关接口将返回 not configured")
	}

	// 初始化 Gin
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))

	h := handler.New(cfg, ledgerClient, chainClient, logger)
	h.RegisterRoutes(r)
	handler.InitStartTime()

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("服务器启动",
		zap.String("addr", addr),
		zap.String("receive_address", cfg.Chain.ReceiveAddress),
		zap.Bool("paywall_disabled", cfg.Paywall.Disabled))
	if err := r.Run(addr); err != nil {
		log.Fatal("Gin 服务器启动失败:", err)
	}
}
