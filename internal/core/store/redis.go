package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/models"
	"pantry-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// systemOwner 共用食譜的擁有者鍵
const systemOwner = "system"

// RedisStore 以 Redis 儲存 JSON 文件
//
//	<prefix>:pantry:<user>             庫存陣列
//	<prefix>:recipes:owner:<id|system> Hash，欄位為食譜 ID
//	<prefix>:ingredients:<recipe>      食材陣列
//	<prefix>:prefs:<user>              偏好
//	<prefix>:recipe:seq                食譜 ID 序號
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 創建 Redis 儲存並測試連接
func NewRedisStore(ctx context.Context, cfg config.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 儲存已連接",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)

	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pantry"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close 關閉連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) pantryKey(userID int64) string {
	return fmt.Sprintf("%s:pantry:%d", s.prefix, userID)
}

func (s *RedisStore) ownerKey(owner string) string {
	return fmt.Sprintf("%s:recipes:owner:%s", s.prefix, owner)
}

func (s *RedisStore) ingredientsKey(recipeID int64) string {
	return fmt.Sprintf("%s:ingredients:%d", s.prefix, recipeID)
}

func (s *RedisStore) prefsKey(userID int64) string {
	return fmt.Sprintf("%s:prefs:%d", s.prefix, userID)
}

func (s *RedisStore) seqKey() string {
	return s.prefix + ":recipe:seq"
}

func ownerOf(r models.Recipe) string {
	if r.OwnerID == nil {
		return systemOwner
	}
	return strconv.FormatInt(*r.OwnerID, 10)
}

// ListPantryItems 實作 Store
func (s *RedisStore) ListPantryItems(ctx context.Context, userID int64) ([]models.PantryItem, error) {
	var items []models.PantryItem
	if err := s.getJSON(ctx, s.pantryKey(userID), &items); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// ListRecipes 實作 Store
func (s *RedisStore) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, owner := range []string{strconv.FormatInt(userID, 10), systemOwner} {
		fields, err := s.client.HGetAll(ctx, s.ownerKey(owner)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list recipes: %w", err)
		}
		for id, raw := range fields {
			var r models.Recipe
			if err := common.ParseJSON(raw, &r); err != nil {
				return nil, fmt.Errorf("failed to unmarshal recipe %s: %w", id, err)
			}
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListIngredients 實作 Store
func (s *RedisStore) ListIngredients(ctx context.Context, recipeIDs []int64) (map[int64][]models.RecipeIngredient, error) {
	out := make(map[int64][]models.RecipeIngredient, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(recipeIDs))
	for i, id := range recipeIDs {
		keys[i] = s.ingredientsKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var ings []models.RecipeIngredient
		if err := common.ParseJSON(raw, &ings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients of recipe %d: %w", recipeIDs[i], err)
		}
		out[recipeIDs[i]] = ings
	}
	return out, nil
}

// GetPreferences 實作 Store
func (s *RedisStore) GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error) {
	var p models.UserPreference
	if err := s.getJSON(ctx, s.prefsKey(userID), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Ping 實作 Store
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveRecipe 實作 RecipeWriter
func (s *RedisStore) SaveRecipe(ctx context.Context, recipe models.Recipe, ingredients []models.RecipeIngredient) (int64, error) {
	if recipe.ID == 0 {
		id, err := s.client.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate recipe id: %w", err)
		}
		recipe.ID = id
	}

	ings := make([]models.RecipeIngredient, len(ingredients))
	for i, ing := range ingredients {
		ing.RecipeID = recipe.ID
		ings[i] = ing
	}

	recipeData, err := json.Marshal(recipe)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recipe: %w", err)
	}
	ingData, err := json.Marshal(ings)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.ownerKey(ownerOf(recipe)), strconv.FormatInt(recipe.ID, 10), recipeData)
		pipe.Set(ctx, s.ingredientsKey(recipe.ID), ingData, 0)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save recipe: %w", err)
	}
	return recipe.ID, nil
}

// Seed 寫入初始資料，並讓 ID 序號不小於已使用的最大 ID
func (s *RedisStore) Seed(ctx context.Context, data SeedData) error {
	byUser := make(map[int64][]models.PantryItem)
	for _, item := range data.PantryItems {
		byUser[item.UserID] = append(byUser[item.UserID], item)
	}
	for userID, items := range byUser {
		if err := s.setJSON(ctx, s.pantryKey(userID), items); err != nil {
			return err
		}
	}

	var maxID int64
	for _, r := range data.Recipes {
		id, err := s.SaveRecipe(ctx, r.Recipe, r.Ingredients)
		if err != nil {
			return err
		}
		if id > maxID {
			maxID = id
		}
	}
	if maxID > 0 {
		seq, err := s.client.Get(ctx, s.seqKey()).Int64()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read recipe seq: %w", err)
		}
		if seq < maxID {
			if err := s.client.Set(ctx, s.seqKey(), maxID, 0).Err(); err != nil {
				return fmt.Errorf("failed to set recipe seq: %w", err)
			}
		}
	}

	for _, p := range data.Preferences {
		if err := s.setJSON(ctx, s.prefsKey(p.UserID), p); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := common.ParseJSONBytes(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
