package api

import (
	"context"
	"fmt"

	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/core/mealdb"
	"pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/core/store"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Services 路由依賴的服務
type Services struct {
	Store     *store.CachedStore
	Cache     *cache.CacheManager
	Recommend *recommend.Service
	Importer  *mealdb.Importer // MealDB 停用時為 nil

	closers []func() error
}

// NewServices 依設定建立儲存、快取、推薦與匯入服務
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	svc := &Services{}

	// 初始化儲存
	var backend store.Store
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis store: %w", err)
		}
		backend = rs
		svc.closers = append(svc.closers, rs.Close)
	default:
		backend = store.NewMemoryStore()
	}

	svc.Cache = cache.NewManager(cfg.Cache)
	svc.closers = append(svc.closers, svc.Cache.Close)
	svc.Store = store.NewCachedStore(backend, svc.Cache)

	if cfg.Store.SeedFile != "" {
		if err := store.SeedFromFile(ctx, svc.Store, cfg.Store.SeedFile); err != nil {
			svc.Close()
			return nil, err
		}
	}

	// 初始化推薦服務
	synonyms, err := recommend.LoadSynonyms(cfg.Recommend.SynonymsFile, cfg.Recommend.SynonymsMode)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("failed to load synonyms: %w", err)
	}
	engine := recommend.NewEngine(recommend.NewMatcher(synonyms), engineOptions(cfg.Recommend))
	svc.Recommend = recommend.NewService(svc.Store, engine, recommend.WithTimeout(cfg.Recommend.RequestTimeout))

	// 初始化 MealDB 匯入
	if cfg.MealDB.Enabled {
		svc.Importer = mealdb.NewImporter(mealdb.NewClient(cfg.MealDB), svc.Store, cfg.MealDB.MaxImport)
	}

	common.LogInfo("Services initialized",
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("cache_enabled", svc.Cache != nil),
		zap.Int("synonym_concepts", synonyms.Len()),
		zap.Bool("mealdb_enabled", svc.Importer != nil),
	)
	return svc, nil
}

// engineOptions 由設定轉為引擎參數
func engineOptions(cfg config.RecommendConfig) recommend.Options {
	opts := recommend.DefaultOptions()
	opts.MinimumMatchScore = cfg.MinimumMatchScore
	opts.MaxRecommendations = cfg.MaxRecommendations
	opts.ExpiringWindowDays = cfg.ExpiringWindowDays

	msgs := cfg.Messages
	for dst, src := range map[*string]string{
		&opts.Messages.EmptyPantry:   msgs.EmptyPantry,
		&opts.Messages.NoRecipes:     msgs.NoRecipes,
		&opts.Messages.NoMatches:     msgs.NoMatches,
		&opts.Messages.FilteredOut:   msgs.FilteredOut,
		&opts.Messages.InternalError: msgs.InternalError,
	} {
		if src != "" {
			*dst = src
		}
	}
	return opts
}

// Close 釋放儲存連線與快取
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			common.LogWarn("Failed to close service", zap.Error(err))
		}
	}
	s.closers = nil
}
