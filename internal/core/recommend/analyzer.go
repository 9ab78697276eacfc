package recommend

import (
	"math"

	"pantry-recommender/internal/models"
)

// DefaultExpiringWindowDays 到期天數小於等於此值（含已過期）視為即將到期
const DefaultExpiringWindowDays = 7

// Weights 評分加權
type Weights struct {
	ExpiringPerItem    float64 // 每個即將到期食材
	ExpiringCap        float64 // 即將到期加分上限
	Completeness       float64 // 無缺少食材
	Cuisine            float64 // 偏好菜系
	Difficulty         float64 // 偏好難度
	Dietary            float64 // 符合所有飲食限制
	PrioritizeExpiring float64 // 使用者偏好優先使用即將到期食材
}

// DefaultWeights 預設加權
func DefaultWeights() Weights {
	return Weights{
		ExpiringPerItem:    0.1,
		ExpiringCap:        0.2,
		Completeness:       0.1,
		Cuisine:            0.15,
		Difficulty:         0.10,
		Dietary:            0.20,
		PrioritizeExpiring: 0.10,
	}
}

// MatchingIngredient 已在庫存中找到的食材
type MatchingIngredient struct {
	PantryItemID         int64   `json:"pantry_item_id"`
	PantryItemName       string  `json:"pantry_item_name"`
	RecipeIngredientName string  `json:"recipe_ingredient_name"`
	PantryQuantity       float64 `json:"pantry_quantity"`
	PantryUnit           string  `json:"pantry_unit"`
	RequiredQuantity     float64 `json:"required_quantity"`
	RequiredUnit         string  `json:"required_unit"`
}

// MissingIngredient 庫存中沒有的食材
type MissingIngredient struct {
	IngredientName   string  `json:"ingredient_name"`
	RequiredQuantity float64 `json:"required_quantity"`
	RequiredUnit     string  `json:"required_unit"`
}

// ExpiringIngredient 食譜使用到的即將到期食材
type ExpiringIngredient struct {
	PantryItemID        int64       `json:"pantry_item_id"`
	PantryItemName      string      `json:"pantry_item_name"`
	ExpirationDate      models.Date `json:"expiration_date"`
	DaysUntilExpiration int         `json:"days_until_expiration"`
}

// RecommendedRecipe 推薦結果
type RecommendedRecipe struct {
	RecipeID                int64                `json:"recipe_id"`
	RecipeName              string               `json:"recipe_name"`
	EstimatedCalories       *int                 `json:"estimated_calories"`
	PreparationTimeMinutes  *int                 `json:"preparation_time_minutes"`
	ImageURL                *string              `json:"image_url"`
	Instructions            string               `json:"instructions"`
	CuisineType             *string              `json:"cuisine_type,omitempty"`
	DifficultyLevel         *string              `json:"difficulty_level,omitempty"`
	MatchingIngredients     []MatchingIngredient `json:"matching_ingredients"`
	MissingIngredients      []MissingIngredient  `json:"missing_ingredients"`
	ExpiringIngredientsUsed []ExpiringIngredient `json:"expiring_ingredients_used"`
	MatchScore              float64              `json:"match_score"`
}

// Analyzer 計算單一食譜與庫存的匹配度
type Analyzer struct {
	matcher        *Matcher
	weights        Weights
	expiringWindow int
}

// NewAnalyzer 建立分析器
func NewAnalyzer(matcher *Matcher, weights Weights, expiringWindowDays int) *Analyzer {
	return &Analyzer{
		matcher:        matcher,
		weights:        weights,
		expiringWindow: expiringWindowDays,
	}
}

// Analyze 分析食譜；沒有食材的食譜回傳 false
// prefs 為 nil 時不計偏好加分
func (a *Analyzer) Analyze(recipe models.Recipe, ingredients []models.RecipeIngredient, index *PantryIndex, prefs *models.UserPreference, today models.Date) (*RecommendedRecipe, bool) {
	if len(ingredients) == 0 {
		return nil, false
	}

	rec := &RecommendedRecipe{
		RecipeID:                recipe.ID,
		RecipeName:              recipe.Name,
		EstimatedCalories:       recipe.EstimatedCalories,
		PreparationTimeMinutes:  recipe.PreparationTimeMinutes,
		ImageURL:                recipe.ImageURL,
		Instructions:            recipe.Instructions,
		CuisineType:             recipe.CuisineType,
		DifficultyLevel:         recipe.DifficultyLevel,
		MatchingIngredients:     []MatchingIngredient{},
		MissingIngredients:      []MissingIngredient{},
		ExpiringIngredientsUsed: []ExpiringIngredient{},
	}

	for _, ing := range ingredients {
		item, ok := a.matcher.FindMatch(ing.IngredientName, index)
		if !ok {
			rec.MissingIngredients = append(rec.MissingIngredients, MissingIngredient{
				IngredientName:   ing.IngredientName,
				RequiredQuantity: ing.RequiredQuantity,
				RequiredUnit:     ing.RequiredUnit,
			})
			continue
		}

		rec.MatchingIngredients = append(rec.MatchingIngredients, MatchingIngredient{
			PantryItemID:         item.ID,
			PantryItemName:       item.Name,
			RecipeIngredientName: ing.IngredientName,
			PantryQuantity:       item.Quantity,
			PantryUnit:           item.Unit,
			RequiredQuantity:     ing.RequiredQuantity,
			RequiredUnit:         ing.RequiredUnit,
		})

		if item.ExpirationDate != nil {
			days := item.ExpirationDate.DaysSince(today)
			if days <= a.expiringWindow {
				rec.ExpiringIngredientsUsed = append(rec.ExpiringIngredientsUsed, ExpiringIngredient{
					PantryItemID:        item.ID,
					PantryItemName:      item.Name,
					ExpirationDate:      *item.ExpirationDate,
					DaysUntilExpiration: days,
				})
			}
		}
	}

	rec.MatchScore = a.score(recipe, len(ingredients), rec, prefs)
	return rec, true
}

// score 基礎分數加上各項加分，限制在 [0, 1] 並取到小數第三位
func (a *Analyzer) score(recipe models.Recipe, total int, rec *RecommendedRecipe, prefs *models.UserPreference) float64 {
	w := a.weights
	score := float64(len(rec.MatchingIngredients)) / float64(total)

	if n := len(rec.ExpiringIngredientsUsed); n > 0 {
		score += math.Min(w.ExpiringCap, w.ExpiringPerItem*float64(n))
	}
	if len(rec.MissingIngredients) == 0 {
		score += w.Completeness
	}

	if prefs != nil {
		if recipe.CuisineType != nil && containsNormalized(prefs.PreferredCuisines, *recipe.CuisineType) {
			score += w.Cuisine
		}
		if recipe.DifficultyLevel != nil && prefs.PreferredDifficulty != nil &&
			Normalize(*recipe.DifficultyLevel) == Normalize(*prefs.PreferredDifficulty) {
			score += w.Difficulty
		}
		restrictions := normalizedSet(prefs.DietaryRestrictions)
		if len(restrictions) > 0 && recipe.DietaryTags != nil && isSubset(restrictions, normalizedSet(recipe.DietaryTags)) {
			score += w.Dietary
		}
		if prefs.PrioritizeExpiring && len(rec.ExpiringIngredientsUsed) > 0 {
			score += w.PrioritizeExpiring
		}
	}

	score = math.Max(0, math.Min(1, score))
	return math.Round(score*1000) / 1000
}

// normalizedSet 正規化後的集合，略過空字串
func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func containsNormalized(values []string, target string) bool {
	t := Normalize(target)
	for _, v := range values {
		if Normalize(v) == t {
			return true
		}
	}
	return false
}

func isSubset(sub, super map[string]struct{}) bool {
	for k := range sub {
		if _, ok := super[k]; !ok {
			return false
		}
	}
	return true
}
