package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 推薦流程、資料快取與 MealDB 匯入的 Prometheus 指標

var (
	// 推薦請求
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty_pantry", "no_recipes", "no_matches", "filtered_out", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_pipeline_duration_seconds",
			Help:    "Duration of the recommendation pipeline in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	RecipesAnalyzed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_recipes_analyzed",
			Help:    "Number of recipes analyzed per request after preference filtering",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		},
	)

	// 資料快取
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_hits_total",
			Help: "Total number of store cache hits",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_cache_misses_total",
			Help: "Total number of store cache misses",
		},
		[]string{"namespace"},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_cache_evictions_total",
			Help: "Total number of store cache evictions",
		},
	)

	// MealDB 匯入
	MealDBImports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealdb_imports_total",
			Help: "Total number of MealDB import attempts by result",
		},
		[]string{"result"}, // "success", "error"
	)

	MealDBRecipesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mealdb_recipes_imported_total",
			Help: "Total number of recipes imported from MealDB",
		},
	)
)

// RecordRecommendation 記錄一次推薦請求
func RecordRecommendation(outcome string, duration time.Duration, analyzed, returned int) {
	RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	RecipesAnalyzed.Observe(float64(analyzed))
	RecommendationsReturned.Observe(float64(returned))
}

// RecordCacheHit 記錄快取命中
func RecordCacheHit(namespace string) {
	CacheHits.WithLabelValues(namespace).Inc()
}

// RecordCacheMiss 記錄快取未命中
func RecordCacheMiss(namespace string) {
	CacheMisses.WithLabelValues(namespace).Inc()
}

// RecordCacheEviction 記錄快取淘汰
func RecordCacheEviction(n int) {
	CacheEvictions.Add(float64(n))
}

// RecordImport 記錄 MealDB 匯入結果
func RecordImport(imported int, err error) {
	if err != nil {
		MealDBImports.WithLabelValues("error").Inc()
		return
	}
	MealDBImports.WithLabelValues("success").Inc()
	MealDBRecipesImported.Add(float64(imported))
}
