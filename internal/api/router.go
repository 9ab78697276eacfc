package api

import (
	"time"

	"pantry-recommender/internal/api/handlers/health"
	recipeHandler "pantry-recommender/internal/api/handlers/recipe"
	recommendHandler "pantry-recommender/internal/api/handlers/recommend"
	"pantry-recommender/internal/api/middleware"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 背景清理間隔
const (
	rateLimitCleanupInterval = 5 * time.Minute
	dedupCleanupInterval     = 10 * time.Minute
)

// SetupRouter 設置路由，回傳的 stop 用於停止中間件的背景清理
func SetupRouter(cfg *config.Config, svc *Services) (router *gin.Engine, stop func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router = gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID))) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", middleware.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	var stops []func()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.StartCleanup(rateLimitCleanupInterval)
		stops = append(stops, limiter.Stop)
		router.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	dedup.StartCleanup(dedupCleanupInterval)
	stops = append(stops, dedup.Stop)
	router.Use(middleware.Deduplication(dedup))

	// 健康檢查路由
	var cacheStats health.CacheStats
	if svc.Cache != nil {
		cacheStats = svc.Cache
	}
	healthHandler := health.NewHandler(cfg.App.Version, cfg.Store.Backend, svc.Store, cacheStats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Recommend.RequestTimeout))
	{
		recommendations := recommendHandler.NewHandler(svc.Recommend, cfg.Recommend.MaxRecommendations, cfg.App.Debug)
		api.GET("/recommendations", recommendations.HandleRecommendations)

		// 匯入停用時傳入 nil 介面
		var importer recipeHandler.Importer
		if svc.Importer != nil {
			importer = svc.Importer
		}
		recipes := recipeHandler.NewHandler(importer, cfg.App.Debug)
		api.POST("/recipes/import", recipes.HandleImport)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Bool("mealdb_enabled", svc.Importer != nil),
		zap.Duration("request_timeout", cfg.Recommend.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, func() {
		for _, s := range stops {
			s()
		}
	}
}
