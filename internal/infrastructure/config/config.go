package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Store       StoreConfig     `mapstructure:"store"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Recommend   RecommendConfig `mapstructure:"recommend"`
	MealDB      MealDBConfig    `mapstructure:"mealdb"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// StoreConfig 儲存設定
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // memory | redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	SeedFile      string `mapstructure:"seed_file"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RecommendConfig 推薦引擎設定
type RecommendConfig struct {
	MinimumMatchScore  float64        `mapstructure:"minimum_match_score"`
	MaxRecommendations int            `mapstructure:"max_recommendations"`
	ExpiringWindowDays int            `mapstructure:"expiring_window_days"`
	SynonymsFile       string         `mapstructure:"synonyms_file"`
	SynonymsMode       string         `mapstructure:"synonyms_mode"` // merge | replace
	RequestTimeout     time.Duration  `mapstructure:"request_timeout"`
	Messages           MessagesConfig `mapstructure:"messages"`
}

// MessagesConfig 空結果時回傳給使用者的訊息
type MessagesConfig struct {
	EmptyPantry   string `mapstructure:"empty_pantry"`
	NoRecipes     string `mapstructure:"no_recipes"`
	NoMatches     string `mapstructure:"no_matches"`
	FilteredOut   string `mapstructure:"filtered_out"`
	InternalError string `mapstructure:"internal_error"`
}

// MealDBConfig TheMealDB 匯入設定
type MealDBConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxImport int           `mapstructure:"max_import"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.redis_addr", "REDIS_ADDR")
	v.BindEnv("store.redis_password", "REDIS_PASSWORD")
	v.BindEnv("store.seed_file", "SEED_FILE")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("mealdb.enabled", "MEALDB_ENABLED")
	v.BindEnv("recommend.synonyms_file", "SYNONYMS_FILE")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("log_file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳只含預設值的設定（測試使用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-recommender")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 儲存設定
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.key_prefix", "pantry")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.cleanup_interval", "1m")

	// 推薦設定
	v.SetDefault("recommend.minimum_match_score", 0.1)
	v.SetDefault("recommend.max_recommendations", 50)
	v.SetDefault("recommend.expiring_window_days", 7)
	v.SetDefault("recommend.synonyms_mode", "merge")
	v.SetDefault("recommend.request_timeout", "10s")
	v.SetDefault("recommend.messages.empty_pantry", "Your pantry is empty. Add a few items to get recipe recommendations!")
	v.SetDefault("recommend.messages.no_recipes", "No recipes are available right now. Please try again later!")
	v.SetDefault("recommend.messages.no_matches", "We could not find recipes matching your pantry items and preferences. Consider adding more ingredients or adjusting your preferences!")
	v.SetDefault("recommend.messages.filtered_out", "No recipe matches the applied filters. Try adjusting the search criteria.")
	v.SetDefault("recommend.messages.internal_error", "Recommendations are temporarily unavailable. Please try again later.")

	// MealDB 設定
	v.SetDefault("mealdb.enabled", false)
	v.SetDefault("mealdb.base_url", "https://www.themealdb.com/api/json/v1/1")
	v.SetDefault("mealdb.timeout", "15s")
	v.SetDefault("mealdb.max_import", 10)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證儲存設定
	switch config.Store.Backend {
	case "memory":
	case "redis":
		if config.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證推薦設定
	if config.Recommend.MinimumMatchScore < 0 || config.Recommend.MinimumMatchScore > 1 {
		return fmt.Errorf("minimum match score must be within [0, 1]")
	}
	if config.Recommend.MaxRecommendations <= 0 {
		return fmt.Errorf("invalid max recommendations")
	}
	if config.Recommend.ExpiringWindowDays < 0 {
		return fmt.Errorf("invalid expiring window days")
	}
	if mode := config.Recommend.SynonymsMode; mode != "merge" && mode != "replace" {
		return fmt.Errorf("unknown synonyms mode %q", mode)
	}

	// 驗證限流設定
	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
