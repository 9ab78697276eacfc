package recipe

import (
	"context"
	"net/http"
	"strings"

	"pantry-recommender/internal/api/middleware"
	"pantry-recommender/internal/core/mealdb"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Importer 自外部食譜來源匯入
type Importer interface {
	Import(ctx context.Context, query string, ownerID *int64, limit int) (*mealdb.ImportResult, error)
}

// ImportRequest 匯入請求
type ImportRequest struct {
	Query  string `json:"query" binding:"required"` // MealDB 搜尋字串
	Max    int    `json:"max" binding:"min=0"`      // 匯入數量上限，0 使用預設
	Shared bool   `json:"shared"`                   // true 時匯入為共用食譜
}

// Handler 食譜處理程序
type Handler struct {
	importer Importer
	debug    bool
}

// NewHandler 創建新的食譜處理程序，importer 為 nil 表示停用匯入
func NewHandler(importer Importer, debug bool) *Handler {
	return &Handler{importer: importer, debug: debug}
}

// HandleImport 自 TheMealDB 匯入食譜
func (h *Handler) HandleImport(c *gin.Context) {
	requestID := requestid.Get(c)

	if h.importer == nil {
		h.abort(c, common.ErrImportDisabled)
		return
	}

	userID, err := common.ParseUserID(c.GetHeader(middleware.UserIDHeader))
	if err != nil {
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.abort(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("query is empty")))
		return
	}

	var ownerID *int64
	if !req.Shared {
		ownerID = &userID
	}

	common.LogInfo("開始匯入食譜",
		zap.String("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.String("query", req.Query),
		zap.Bool("shared", req.Shared),
	)

	result, err := h.importer.Import(c.Request.Context(), req.Query, ownerID, req.Max)
	if err != nil {
		common.LogError("食譜匯入失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		h.abort(c, common.AsCustomError(err))
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) abort(c *gin.Context, ce *common.CustomError) {
	c.AbortWithStatusJSON(ce.Status, ce.Response(h.debug))
}
