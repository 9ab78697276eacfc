package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pingTimeout 儲存健康檢查的逾時
const pingTimeout = 2 * time.Second

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheStats 提供快取統計
type CacheStats interface {
	GetStats() cache.Stats
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Store     StoreStatus            `json:"store"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// StoreStatus 儲存狀態
type StoreStatus struct {
	Backend string `json:"backend"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	backend string
	store   Pinger
	cache   CacheStats
	started time.Time
}

// NewHandler 創建健康檢查處理器，cache 可為 nil
func NewHandler(version, backend string, store Pinger, stats CacheStats) *Handler {
	return &Handler{
		version: version,
		backend: backend,
		store:   store,
		cache:   stats,
		started: time.Now(),
	}
}

func (h *Handler) pingStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}

// HealthCheck 健康檢查，儲存無法連線時回傳 503
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Store: StoreStatus{Backend: h.backend, Healthy: true},
	}

	if h.cache != nil {
		stats := h.cache.GetStats()
		response.Cache = &stats
	}

	status := http.StatusOK
	if err := h.pingStore(c.Request.Context()); err != nil {
		common.LogError("Store health check failed", zap.Error(err))
		response.Status = "degraded"
		response.Store.Healthy = false
		response.Store.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(status, response)
}

// ReadinessCheck 就緒檢查，儲存可連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.pingStore(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
