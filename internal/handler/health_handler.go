package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	// startTime 记录服务启动时间
	startTime     time.Time
	startTimeOnce sync.Once
)

// InitStartTime 初始化服务启动时间（只执行一次）
func InitStartTime() {
	startTimeOnce.Do(func() {
		startTime = time.Now()
	})
}

// Healthz 存活探针（liveness probe）
// 检查服务是否正在运行，总是返回 200（除非服务完全崩溃）
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"type":   "liveness",
	})
}

// Readyz 就绪探针（readiness probe）
// 启动预热期过后检查账本连通性；账本未配置时按降级就绪处理
func (h *Handler) Readyz(c *gin.Context) {
	if startTime.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"type":    "readiness",
			"message": "服务启动时间未初始化",
		})
		return
	}

	elapsed := time.Since(startTime)
	if elapsed < 5*time.Second {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not ready",
			"type":      "readiness",
			"message":   "服务启动中，等待就绪",
			"elapsed":   elapsed.String(),
			"remaining": (5*time.Second - elapsed).String(),
		})
		return
	}

	if !h.ledger.Configured() {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"type":    "readiness",
			"message": "账本未配置，降级运行",
			"uptime":  elapsed.String(),
		})
		return
	}

	if err := h.ledger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"type":    "readiness",
			"message": "账本连接失败",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"type":    "readiness",
		"message": "服务已就绪",
		"uptime":  elapsed.String(),
	})
}
