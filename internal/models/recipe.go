package models

// Recipe 食譜
// OwnerID 為 nil 時是系統共用食譜
type Recipe struct {
	ID                     int64    `json:"id"`
	OwnerID                *int64   `json:"owner_id,omitempty"`
	Name                   string   `json:"name"`
	Instructions           string   `json:"instructions"`
	EstimatedCalories      *int     `json:"estimated_calories,omitempty"`
	PreparationTimeMinutes *int     `json:"preparation_time_minutes,omitempty"`
	ImageURL               *string  `json:"image_url,omitempty"`
	DietaryTags            []string `json:"dietary_tags,omitempty"`
	CuisineType            *string  `json:"cuisine_type,omitempty"`
	DifficultyLevel        *string  `json:"difficulty_level,omitempty"`
}

// IsShared 是否為系統共用食譜
func (r Recipe) IsShared() bool {
	return r.OwnerID == nil
}

// AccessibleBy 使用者自己的食譜或共用食譜
func (r Recipe) AccessibleBy(userID int64) bool {
	return r.OwnerID == nil || *r.OwnerID == userID
}

// RecipeIngredient 食譜所需食材
type RecipeIngredient struct {
	RecipeID         int64   `json:"recipe_id"`
	IngredientName   string  `json:"ingredient_name"`
	RequiredQuantity float64 `json:"required_quantity"`
	RequiredUnit     string  `json:"required_unit"`
}
