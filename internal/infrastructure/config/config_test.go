package config

import (
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("validateConfig(Default()) error = %v", err)
	}
	if cfg.Recommend.MinimumMatchScore != 0.1 {
		t.Errorf("MinimumMatchScore = %v, want 0.1", cfg.Recommend.MinimumMatchScore)
	}
	if cfg.Recommend.MaxRecommendations != 50 {
		t.Errorf("MaxRecommendations = %d, want 50", cfg.Recommend.MaxRecommendations)
	}
	if cfg.Recommend.ExpiringWindowDays != 7 {
		t.Errorf("ExpiringWindowDays = %d, want 7", cfg.Recommend.ExpiringWindowDays)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Recommend.Messages.EmptyPantry == "" {
		t.Error("empty pantry message should have a default")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis"; c.Store.RedisAddr = "" }},
		{"cache size", func(c *Config) { c.Cache.MaxSize = 0 }},
		{"score above one", func(c *Config) { c.Recommend.MinimumMatchScore = 1.5 }},
		{"zero max recommendations", func(c *Config) { c.Recommend.MaxRecommendations = 0 }},
		{"synonyms mode", func(c *Config) { c.Recommend.SynonymsMode = "append" }},
		{"rate limit window", func(c *Config) { c.RateLimit.Window = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("APP_RECOMMEND_MAX_RECOMMENDATIONS", "20")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "redis:6380" {
		t.Errorf("store config = %+v", cfg.Store)
	}
	if cfg.Recommend.MaxRecommendations != 20 {
		t.Errorf("MaxRecommendations = %d, want 20", cfg.Recommend.MaxRecommendations)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}
