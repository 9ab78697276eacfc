package recommend

import (
	"pantry-recommender/internal/models"
)

// 預設引擎參數
const (
	DefaultMinimumMatchScore  = 0.1
	DefaultMaxRecommendations = 50
)

// 推薦結果類型，用於指標與日誌
const (
	OutcomeOK          = "ok"
	OutcomeEmptyPantry = "empty_pantry"
	OutcomeNoRecipes   = "no_recipes"
	OutcomeNoMatches   = "no_matches"
	OutcomeFilteredOut = "filtered_out"
	OutcomeError       = "error"
)

// Messages 結果為空時的說明訊息
type Messages struct {
	EmptyPantry   string
	NoRecipes     string
	NoMatches     string
	FilteredOut   string
	InternalError string
}

// DefaultMessages 預設英文訊息
func DefaultMessages() Messages {
	return Messages{
		EmptyPantry:   "Your pantry is empty. Add a few items to get recipe recommendations!",
		NoRecipes:     "No recipes are available right now. Please try again later!",
		NoMatches:     "We could not find recipes matching your pantry items and preferences. Consider adding more ingredients or adjusting your preferences!",
		FilteredOut:   "No recipe matches the applied filters. Try adjusting the search criteria.",
		InternalError: "Recommendations are temporarily unavailable. Please try again later.",
	}
}

// Options 引擎的不可變設定
type Options struct {
	MinimumMatchScore  float64
	MaxRecommendations int
	ExpiringWindowDays int
	Weights            Weights
	Messages           Messages
}

// DefaultOptions 預設設定
func DefaultOptions() Options {
	return Options{
		MinimumMatchScore:  DefaultMinimumMatchScore,
		MaxRecommendations: DefaultMaxRecommendations,
		ExpiringWindowDays: DefaultExpiringWindowDays,
		Weights:            DefaultWeights(),
		Messages:           DefaultMessages(),
	}
}

// Request 單次請求的篩選、排序與數量
type Request struct {
	Filters            Filters
	Sort               Sort
	PrioritizeExpiring bool
	Limit              int
	UsePreferences     bool
}

// DefaultRequest 無篩選、依 match_score 由高到低、使用偏好
func DefaultRequest() Request {
	return Request{Sort: DefaultSort(), UsePreferences: true}
}

// Input 引擎輸入，所有資料已載入記憶體
type Input struct {
	UserID      int64
	PantryItems []models.PantryItem
	Recipes     []models.Recipe
	Ingredients map[int64][]models.RecipeIngredient
	Preferences *models.UserPreference
	Request     Request
	Today       models.Date
}

// Metadata 推薦過程的統計
type Metadata struct {
	TotalRecipesAnalyzed int     `json:"total_recipes_analyzed"`
	TotalBeforeFilters   int     `json:"total_before_filters"`
	TotalAfterFilters    int     `json:"total_after_filters"`
	AppliedFilters       Filters `json:"applied_filters"`
	AppliedSort          Sort    `json:"applied_sort"`
	PrioritizeExpiring   bool    `json:"prioritize_expiring"`
	Limit                int     `json:"limit"`
	UsedPreferences      bool    `json:"used_preferences"`
}

// Response 推薦結果
type Response struct {
	Recommendations  []*RecommendedRecipe `json:"recommendations"`
	TotalPantryItems int                  `json:"total_pantry_items"`
	Metadata         Metadata             `json:"metadata"`
	Message          *string              `json:"message"`
	Outcome          string               `json:"-"`
}

// Engine 推薦引擎，Recommend 只依賴輸入，可並行使用
type Engine struct {
	opts     Options
	analyzer *Analyzer
}

// NewEngine 建立推薦引擎
func NewEngine(matcher *Matcher, opts Options) *Engine {
	if matcher == nil {
		matcher = NewMatcher(nil)
	}
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = DefaultMaxRecommendations
	}
	return &Engine{
		opts:     opts,
		analyzer: NewAnalyzer(matcher, opts.Weights, opts.ExpiringWindowDays),
	}
}

// Options 回傳引擎設定
func (e *Engine) Options() Options {
	return e.opts
}

// Recommend 執行推薦流程：
// 偏好排除 → 逐一分析 → 最低分數 → 篩選 → 排序 → 截斷
func (e *Engine) Recommend(in Input) *Response {
	req := in.Request
	req.Sort = req.Sort.Normalized()
	limit := effectiveLimit(req.Limit, e.opts.MaxRecommendations)

	prefs := in.Preferences
	if !req.UsePreferences {
		prefs = nil
	}

	resp := &Response{
		Recommendations:  []*RecommendedRecipe{},
		TotalPantryItems: len(in.PantryItems),
		Metadata: Metadata{
			AppliedFilters:     req.Filters,
			AppliedSort:        req.Sort,
			PrioritizeExpiring: req.PrioritizeExpiring,
			Limit:              limit,
			UsedPreferences:    prefs != nil,
		},
	}

	if len(in.PantryItems) == 0 {
		return e.withMessage(resp, OutcomeEmptyPantry, e.opts.Messages.EmptyPantry)
	}
	if len(in.Recipes) == 0 {
		return e.withMessage(resp, OutcomeNoRecipes, e.opts.Messages.NoRecipes)
	}

	candidates := FilterByPreferences(in.Recipes, prefs)
	resp.Metadata.TotalRecipesAnalyzed = len(candidates)

	index := NewPantryIndex(in.PantryItems)
	scored := make([]*RecommendedRecipe, 0, len(candidates))
	for _, recipe := range candidates {
		rec, ok := e.analyzer.Analyze(recipe, in.Ingredients[recipe.ID], index, prefs, in.Today)
		if !ok || rec.MatchScore < e.opts.MinimumMatchScore {
			continue
		}
		scored = append(scored, rec)
	}
	resp.Metadata.TotalBeforeFilters = len(scored)

	filtered := req.Filters.Apply(scored)
	SortRecommendations(filtered, req.Sort, req.PrioritizeExpiring)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	resp.Recommendations = filtered
	resp.Metadata.TotalAfterFilters = len(filtered)

	switch {
	case len(scored) == 0:
		return e.withMessage(resp, OutcomeNoMatches, e.opts.Messages.NoMatches)
	case len(filtered) == 0:
		return e.withMessage(resp, OutcomeFilteredOut, e.opts.Messages.FilteredOut)
	}
	resp.Outcome = OutcomeOK
	return resp
}

// ErrorResponse 內部錯誤時回傳的空結果
func (e *Engine) ErrorResponse(req Request) *Response {
	req.Sort = req.Sort.Normalized()
	resp := &Response{
		Recommendations: []*RecommendedRecipe{},
		Metadata: Metadata{
			AppliedFilters:     req.Filters,
			AppliedSort:        req.Sort,
			PrioritizeExpiring: req.PrioritizeExpiring,
			Limit:              effectiveLimit(req.Limit, e.opts.MaxRecommendations),
		},
	}
	return e.withMessage(resp, OutcomeError, e.opts.Messages.InternalError)
}

func (e *Engine) withMessage(resp *Response, outcome, message string) *Response {
	resp.Outcome = outcome
	resp.Message = &message
	return resp
}
