package models

// UserPreference 使用者偏好（每位使用者最多一筆）
type UserPreference struct {
	UserID              int64    `json:"user_id"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	PreferredCuisines   []string `json:"preferred_cuisines,omitempty"`
	PreferredDifficulty *string  `json:"preferred_difficulty,omitempty"`
	MaxPrepTime         Bound    `json:"max_prep_time_preference"`
	MaxCalories         Bound    `json:"max_calories_preference"`
	PrioritizeExpiring  bool     `json:"prioritize_expiring_ingredients"`
}
