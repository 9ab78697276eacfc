package recommend

import (
	"context"
	"fmt"
	"time"

	"pantry-recommender/internal/core/metrics"
	"pantry-recommender/internal/core/store"
	"pantry-recommender/internal/models"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 推薦服務：自儲存載入資料後交由引擎計算
// 任何錯誤都轉為帶訊息的空結果，不會回傳錯誤
type Service struct {
	store   store.Store
	engine  *Engine
	timeout time.Duration
	now     func() time.Time
}

// ServiceOption 服務選項
type ServiceOption func(*Service)

// WithTimeout 載入與計算的逾時
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// WithClock 注入時鐘（測試使用）
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService 創建推薦服務
func NewService(st store.Store, engine *Engine, opts ...ServiceOption) *Service {
	s := &Service{
		store:  st,
		engine: engine,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend 為使用者產生推薦
func (s *Service) Recommend(ctx context.Context, userID int64, req Request) (resp *Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			common.LogError("推薦流程發生 panic",
				zap.Int64("user_id", userID),
				zap.Any("panic", r),
			)
			resp = s.engine.ErrorResponse(req)
		}
		metrics.RecordRecommendation(resp.Outcome, time.Since(start),
			resp.Metadata.TotalRecipesAnalyzed, len(resp.Recommendations))
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	in, err := s.load(ctx, userID, req)
	if err != nil {
		common.LogError("載入推薦資料失敗",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return s.engine.ErrorResponse(req)
	}

	resp = s.engine.Recommend(in)

	common.LogInfo("推薦完成",
		zap.Int64("user_id", userID),
		zap.String("outcome", resp.Outcome),
		zap.Int("pantry_items", resp.TotalPantryItems),
		zap.Int("analyzed", resp.Metadata.TotalRecipesAnalyzed),
		zap.Int("before_filters", resp.Metadata.TotalBeforeFilters),
		zap.Int("returned", len(resp.Recommendations)),
		zap.Duration("耗時", time.Since(start)),
	)
	return resp
}

// load 自儲存載入一次推薦所需的全部資料
func (s *Service) load(ctx context.Context, userID int64, req Request) (Input, error) {
	in := Input{
		UserID:  userID,
		Request: req,
		Today:   models.DateOf(s.now()),
	}

	pantry, err := s.store.ListPantryItems(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("list pantry items: %w", err)
	}
	in.PantryItems = pantry
	if len(pantry) == 0 {
		return in, ctx.Err()
	}

	recipes, err := s.store.ListRecipes(ctx, userID)
	if err != nil {
		return in, fmt.Errorf("list recipes: %w", err)
	}
	in.Recipes = recipes
	if len(recipes) == 0 {
		return in, ctx.Err()
	}

	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	in.Ingredients, err = s.store.ListIngredients(ctx, ids)
	if err != nil {
		return in, fmt.Errorf("list ingredients: %w", err)
	}

	if req.UsePreferences {
		in.Preferences, err = s.store.GetPreferences(ctx, userID)
		if err != nil {
			return in, fmt.Errorf("get preferences: %w", err)
		}
	}

	return in, ctx.Err()
}
