package store

import (
	"context"
	"errors"

	"pantry-recommender/internal/models"
)

// ErrNotFound 資料不存在
var ErrNotFound = errors.New("not found")

// Store 推薦引擎所需的唯讀資料來源
type Store interface {
	// ListPantryItems 使用者的所有庫存
	ListPantryItems(ctx context.Context, userID int64) ([]models.PantryItem, error)
	// ListRecipes 使用者自己的食譜與共用食譜，依 ID 排序
	ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error)
	// ListIngredients 依食譜 ID 取得食材
	ListIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error)
	// GetPreferences 使用者偏好，不存在時回傳 nil, nil
	GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error)
	Ping(ctx context.Context) error
}

// RecipeWriter 寫入食譜（MealDB 匯入使用）
type RecipeWriter interface {
	SaveRecipe(ctx context.Context, recipe models.Recipe, ingredients []models.RecipeIngredient) (int64, error)
}

// SeedData 初始資料
type SeedData struct {
	PantryItems []models.PantryItem     `json:"pantry_items"`
	Recipes     []SeedRecipe            `json:"recipes"`
	Preferences []models.UserPreference `json:"preferences"`
}

// SeedRecipe 內嵌食材的食譜
type SeedRecipe struct {
	models.Recipe
	Ingredients []models.RecipeIngredient `json:"ingredients"`
}

// Seeder 可載入初始資料的儲存
type Seeder interface {
	Seed(ctx context.Context, data SeedData) error
}
