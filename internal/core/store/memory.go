package store

import (
	"context"
	"sort"
	"sync"

	"pantry-recommender/internal/models"
)

// MemoryStore 記憶體儲存
type MemoryStore struct {
	mu          sync.RWMutex
	pantry      map[int64][]models.PantryItem
	recipes     map[int64]models.Recipe
	ingredients map[int64][]models.RecipeIngredient
	prefs       map[int64]models.UserPreference
	nextID      int64
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pantry:      make(map[int64][]models.PantryItem),
		recipes:     make(map[int64]models.Recipe),
		ingredients: make(map[int64][]models.RecipeIngredient),
		prefs:       make(map[int64]models.UserPreference),
	}
}

// Seed 載入初始資料，食譜 ID 為 0 時自動配號
func (s *MemoryStore) Seed(_ context.Context, data SeedData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range data.PantryItems {
		s.pantry[item.UserID] = append(s.pantry[item.UserID], item)
	}
	for _, r := range data.Recipes {
		s.saveLocked(r.Recipe, r.Ingredients)
	}
	for _, p := range data.Preferences {
		s.prefs[p.UserID] = p
	}
	return nil
}

// ListPantryItems 實作 Store
func (s *MemoryStore) ListPantryItems(_ context.Context, userID int64) ([]models.PantryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PantryItem(nil), s.pantry[userID]...), nil
}

// ListRecipes 實作 Store
func (s *MemoryStore) ListRecipes(_ context.Context, userID int64) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Recipe
	for _, r := range s.recipes {
		if r.AccessibleBy(userID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListIngredients 實作 Store
func (s *MemoryStore) ListIngredients(_ context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]models.RecipeIngredient, len(recipeIDs))
	for _, id := range recipeIDs {
		if ings, ok := s.ingredients[id]; ok {
			out[id] = append([]models.RecipeIngredient(nil), ings...)
		}
	}
	return out, nil
}

// GetPreferences 實作 Store
func (s *MemoryStore) GetPreferences(_ context.Context, userID int64) (*models.UserPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Ping 實作 Store
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// SaveRecipe 實作 RecipeWriter
func (s *MemoryStore) SaveRecipe(_ context.Context, recipe models.Recipe, ingredients []models.RecipeIngredient) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(recipe, ingredients), nil
}

func (s *MemoryStore) saveLocked(recipe models.Recipe, ingredients []models.RecipeIngredient) int64 {
	if recipe.ID == 0 {
		s.nextID++
		recipe.ID = s.nextID
	} else if recipe.ID > s.nextID {
		s.nextID = recipe.ID
	}

	ings := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		ing.RecipeID = recipe.ID
		ings[i] = ing
	}

	s.recipes[recipe.ID] = recipe
	s.ingredients[recipe.ID] = ings
	return recipe.ID
}
