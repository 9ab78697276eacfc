package recommend

import (
	"context"
	"errors"
	"net/http"

	"pantry-recommender/internal/api/middleware"
	recommendService "pantry-recommender/internal/core/recommend"
	"pantry-recommender/internal/models"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recommender 產生推薦
type Recommender interface {
	Recommend(ctx context.Context, userID int64, req recommendService.Request) *recommendService.Response
}

// RecommendationsQuery GET /api/v1/recommendations 的查詢參數
type RecommendationsQuery struct {
	MaxPreparationTime     *int   `form:"max_preparation_time" binding:"omitempty,min=0"`
	MaxCalories            *int   `form:"max_calories" binding:"omitempty,min=0"`
	MaxMissingIngredients  *int   `form:"max_missing_ingredients" binding:"omitempty,min=0"`
	MinMatchingIngredients int    `form:"min_matching_ingredients" binding:"min=0"`
	SortBy                 string `form:"sort_by,default=match_score" binding:"oneof=match_score preparation_time calories expiring_ingredients"`
	SortOrder              string `form:"sort_order,default=desc" binding:"oneof=asc desc"`
	UsePreferences         bool   `form:"use_preferences,default=true"`
	PrioritizeExpiring     bool   `form:"prioritize_expiring"`
	Limit                  int    `form:"limit" binding:"omitempty,min=1"`
}

// toRequest 轉為引擎請求
func (q RecommendationsQuery) toRequest() recommendService.Request {
	return recommendService.Request{
		Filters: recommendService.Filters{
			MaxPreparationTime:     models.BoundFrom(q.MaxPreparationTime),
			MaxCalories:            models.BoundFrom(q.MaxCalories),
			MaxMissingIngredients:  models.BoundFrom(q.MaxMissingIngredients),
			MinMatchingIngredients: q.MinMatchingIngredients,
		},
		Sort: recommendService.Sort{
			By:    recommendService.SortKey(q.SortBy),
			Order: recommendService.SortOrder(q.SortOrder),
		},
		PrioritizeExpiring: q.PrioritizeExpiring,
		Limit:              q.Limit,
		UsePreferences:     q.UsePreferences,
	}
}

// Handler 推薦處理程序
type Handler struct {
	service  Recommender
	maxLimit int
	debug    bool
}

// NewHandler 創建推薦處理程序，maxLimit 為 limit 參數上限
func NewHandler(service Recommender, maxLimit int, debug bool) *Handler {
	return &Handler{service: service, maxLimit: maxLimit, debug: debug}
}

// HandleRecommendations 依使用者食材庫存推薦食譜
func (h *Handler) HandleRecommendations(c *gin.Context) {
	requestID := requestid.Get(c)

	userID, err := common.ParseUserID(c.GetHeader(middleware.UserIDHeader))
	if err != nil {
		common.LogWarn("使用者身分無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	var query RecommendationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.LogWarn("查詢參數無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if h.maxLimit > 0 && query.Limit > h.maxLimit {
		h.abort(c, common.ErrInvalidRequest.Wrap(errors.New("limit exceeds maximum recommendations")))
		return
	}

	common.LogInfo("開始處理推薦請求",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.String("sort_by", query.SortBy),
		zap.Bool("use_preferences", query.UsePreferences),
	)

	resp := h.service.Recommend(c.Request.Context(), userID, query.toRequest())

	common.LogInfo("推薦完成",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.String("outcome", resp.Outcome),
		zap.Int("recommendations", len(resp.Recommendations)),
	)

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) abort(c *gin.Context, ce *common.CustomError) {
	c.AbortWithStatusJSON(ce.Status, ce.Response(h.debug))
}
