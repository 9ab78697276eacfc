package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"pantry-recommender/internal/core/cache"
	"pantry-recommender/internal/models"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// 快取命名空間
const (
	nsPantry      = "pantry"
	nsRecipes     = "recipes"
	nsIngredients = "ingredients"
	nsPrefs       = "prefs"
)

// CachedStore 讀取穿透快取，cache 為 nil 時直接讀取底層儲存
type CachedStore struct {
	inner Store
	cache *cache.CacheManager
	// 共用食譜變更時遞增，使所有使用者的食譜清單快取失效
	recipesGen atomic.Int64
}

// NewCachedStore 建立快取儲存
func NewCachedStore(inner Store, cm *cache.CacheManager) *CachedStore {
	return &CachedStore{inner: inner, cache: cm}
}

// Inner 底層儲存
func (s *CachedStore) Inner() Store {
	return s.inner
}

// ListPantryItems 實作 Store
func (s *CachedStore) ListPantryItems(ctx context.Context, userID int64) ([]models.PantryItem, error) {
	var items []models.PantryItem
	err := s.readThrough(nsPantry, strconv.FormatInt(userID, 10), &items, func() (interface{}, error) {
		return s.inner.ListPantryItems(ctx, userID)
	})
	return items, err
}

// ListRecipes 實作 Store
func (s *CachedStore) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.readThrough(nsRecipes, s.recipesKey(userID), &recipes, func() (interface{}, error) {
		return s.inner.ListRecipes(ctx, userID)
	})
	return recipes, err
}

// ListIngredients 實作 Store，逐一快取每個食譜的食材
func (s *CachedStore) ListIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error) {
	if s.cache == nil {
		return s.inner.ListIngredients(ctx, recipeIDs)
	}

	out := make(map[int64][]models.RecipeIngredient, len(recipeIDs))
	var missing []int64
	for _, id := range recipeIDs {
		data, ok := s.cache.Get(nsIngredients, strconv.FormatInt(id, 10))
		if !ok {
			missing = append(missing, id)
			continue
		}
		var ings []models.RecipeIngredient
		if err := json.Unmarshal(data, &ings); err != nil {
			missing = append(missing, id)
			continue
		}
		if ings != nil {
			out[id] = ings
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.inner.ListIngredients(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		ings := fetched[id]
		if ings != nil {
			out[id] = ings
		}
		s.putJSON(nsIngredients, strconv.FormatInt(id, 10), ings)
	}
	return out, nil
}

// GetPreferences 實作 Store，不存在的偏好也會快取
func (s *CachedStore) GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error) {
	var prefs *models.UserPreference
	err := s.readThrough(nsPrefs, strconv.FormatInt(userID, 10), &prefs, func() (interface{}, error) {
		return s.inner.GetPreferences(ctx, userID)
	})
	return prefs, err
}

// Ping 實作 Store
func (s *CachedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// SaveRecipe 寫入底層儲存並使相關快取失效
func (s *CachedStore) SaveRecipe(ctx context.Context, recipe models.Recipe, ingredients []models.RecipeIngredient) (int64, error) {
	writer, ok := s.inner.(RecipeWriter)
	if !ok {
		return 0, fmt.Errorf("store does not support writing recipes")
	}

	id, err := writer.SaveRecipe(ctx, recipe, ingredients)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.Delete(nsIngredients, strconv.FormatInt(id, 10))
		if recipe.OwnerID == nil {
			s.recipesGen.Add(1)
		} else {
			s.cache.Delete(nsRecipes, s.recipesKey(*recipe.OwnerID))
		}
	}
	return id, nil
}

// Seed 轉交底層儲存
func (s *CachedStore) Seed(ctx context.Context, data SeedData) error {
	seeder, ok := s.inner.(Seeder)
	if !ok {
		return fmt.Errorf("store does not support seeding")
	}
	return seeder.Seed(ctx, data)
}

func (s *CachedStore) recipesKey(userID int64) string {
	return strconv.FormatInt(s.recipesGen.Load(), 10) + ":" + strconv.FormatInt(userID, 10)
}

// readThrough 先查快取，未命中時載入並寫回
func (s *CachedStore) readThrough(namespace, key string, dst interface{}, load func() (interface{}, error)) error {
	if s.cache != nil {
		if data, ok := s.cache.Get(namespace, key); ok {
			if err := json.Unmarshal(data, dst); err == nil {
				return nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", namespace, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", namespace, err)
	}
	if s.cache != nil {
		s.put(namespace, key, data)
	}
	return nil
}

func (s *CachedStore) putJSON(namespace, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.put(namespace, key, data)
}

func (s *CachedStore) put(namespace, key string, data []byte) {
	if err := s.cache.Set(namespace, key, data); err != nil {
		common.LogWarn("快取寫入失敗",
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}
}
