package recommend

import (
	"pantry-recommender/internal/models"
)

// FilterByPreferences 依使用者偏好排除不符合的食譜，保留原順序
// 食譜缺少某屬性時不因該規則被排除，唯有飲食限制存在時缺少標籤視為不符
func FilterByPreferences(recipes []models.Recipe, prefs *models.UserPreference) []models.Recipe {
	if prefs == nil {
		return recipes
	}

	restrictions := normalizedSet(prefs.DietaryRestrictions)
	cuisines := normalizedSet(prefs.PreferredCuisines)
	var difficulty string
	if prefs.PreferredDifficulty != nil {
		difficulty = Normalize(*prefs.PreferredDifficulty)
	}

	kept := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if len(restrictions) > 0 {
			if r.DietaryTags == nil || !isSubset(restrictions, normalizedSet(r.DietaryTags)) {
				continue
			}
		}
		if len(cuisines) > 0 && r.CuisineType != nil {
			if _, ok := cuisines[Normalize(*r.CuisineType)]; !ok {
				continue
			}
		}
		if difficulty != "" && r.DifficultyLevel != nil && Normalize(*r.DifficultyLevel) != difficulty {
			continue
		}
		if !prefs.MaxPrepTime.Allows(r.PreparationTimeMinutes) {
			continue
		}
		if !prefs.MaxCalories.Allows(r.EstimatedCalories) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
