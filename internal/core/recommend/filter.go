package recommend

import (
	"cmp"
	"slices"

	"pantry-recommender/internal/models"
)

// SortKey 排序欄位
type SortKey string

const (
	SortByMatchScore      SortKey = "match_score"
	SortByPreparationTime SortKey = "preparation_time"
	SortByCalories        SortKey = "calories"
	SortByExpiring        SortKey = "expiring_ingredients"
)

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortKeys 支援的排序欄位
var SortKeys = []SortKey{SortByMatchScore, SortByPreparationTime, SortByCalories, SortByExpiring}

// Sort 排序設定
type Sort struct {
	By    SortKey   `json:"sort_by"`
	Order SortOrder `json:"sort_order"`
}

// DefaultSort match_score 由高到低
func DefaultSort() Sort {
	return Sort{By: SortByMatchScore, Order: SortDesc}
}

// Normalized 未知欄位回到預設排序，未知方向視為 desc
func (s Sort) Normalized() Sort {
	if !slices.Contains(SortKeys, s.By) {
		return DefaultSort()
	}
	if s.Order != SortAsc {
		s.Order = SortDesc
	}
	return s
}

// Filters 評分後的篩選條件
type Filters struct {
	MaxPreparationTime     models.Bound `json:"max_preparation_time"`
	MaxCalories            models.Bound `json:"max_calories"`
	MaxMissingIngredients  models.Bound `json:"max_missing_ingredients"`
	MinMatchingIngredients int          `json:"min_matching_ingredients"`
}

// Apply 套用篩選，準備時間或熱量未知的食譜保留
func (f Filters) Apply(recs []*RecommendedRecipe) []*RecommendedRecipe {
	kept := make([]*RecommendedRecipe, 0, len(recs))
	for _, r := range recs {
		if !f.MaxPreparationTime.Allows(r.PreparationTimeMinutes) {
			continue
		}
		if !f.MaxCalories.Allows(r.EstimatedCalories) {
			continue
		}
		if !f.MaxMissingIngredients.AllowsCount(len(r.MissingIngredients)) {
			continue
		}
		if len(r.MatchingIngredients) < f.MinMatchingIngredients {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// SortRecommendations 穩定排序，相同時保留原順序
// prioritizeExpiring 時再依使用的即將到期食材數量由多到少穩定排序
func SortRecommendations(recs []*RecommendedRecipe, s Sort, prioritizeExpiring bool) {
	s = s.Normalized()

	slices.SortStableFunc(recs, func(a, b *RecommendedRecipe) int {
		return compareBy(a, b, s)
	})

	if prioritizeExpiring {
		slices.SortStableFunc(recs, func(a, b *RecommendedRecipe) int {
			return cmp.Compare(len(b.ExpiringIngredientsUsed), len(a.ExpiringIngredientsUsed))
		})
	}
}

func compareBy(a, b *RecommendedRecipe, s Sort) int {
	desc := s.Order == SortDesc
	switch s.By {
	case SortByPreparationTime:
		return compareNullable(a.PreparationTimeMinutes, b.PreparationTimeMinutes, desc)
	case SortByCalories:
		return compareNullable(a.EstimatedCalories, b.EstimatedCalories, desc)
	case SortByExpiring:
		return directed(cmp.Compare(len(a.ExpiringIngredientsUsed), len(b.ExpiringIngredientsUsed)), desc)
	default:
		return directed(cmp.Compare(a.MatchScore, b.MatchScore), desc)
	}
}

// compareNullable nil 不論方向都排在最後
func compareNullable(a, b *int, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return directed(cmp.Compare(*a, *b), desc)
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// effectiveLimit 呼叫端 limit 不可超過上限
func effectiveLimit(limit, ceiling int) int {
	if limit > 0 && limit < ceiling {
		return limit
	}
	return ceiling
}
