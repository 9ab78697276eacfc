package mealdb

import (
	"context"
	"fmt"

	"pantry-recommender/internal/core/metrics"
	"pantry-recommender/internal/core/store"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Searcher 搜尋菜餚
type Searcher interface {
	Search(ctx context.Context, query string) ([]Meal, error)
}

// ImportedRecipe 已匯入的食譜
type ImportedRecipe struct {
	RecipeID    int64  `json:"recipe_id"`
	Name        string `json:"name"`
	MealID      string `json:"mealdb_id"`
	Ingredients int    `json:"ingredients"`
}

// ImportResult 匯入結果
type ImportResult struct {
	Query    string           `json:"query"`
	Found    int              `json:"found"`
	Imported []ImportedRecipe `json:"imported"`
}

// Importer 將 MealDB 菜餚匯入儲存
type Importer struct {
	searcher Searcher
	writer   store.RecipeWriter
	maxItems int
}

// NewImporter 創建匯入器，maxItems 為單次匯入上限
func NewImporter(searcher Searcher, writer store.RecipeWriter, maxItems int) *Importer {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Importer{searcher: searcher, writer: writer, maxItems: maxItems}
}

// Import 搜尋並匯入最多 limit 道菜，ownerID 為 nil 時匯入為共用食譜
func (im *Importer) Import(ctx context.Context, query string, ownerID *int64, limit int) (result *ImportResult, err error) {
	defer func() {
		imported := 0
		if result != nil {
			imported = len(result.Imported)
		}
		metrics.RecordImport(imported, err)
	}()

	if limit <= 0 || limit > im.maxItems {
		limit = im.maxItems
	}

	meals, err := im.searcher.Search(ctx, query)
	if err != nil {
		return nil, common.ErrImportFailed.Wrap(err)
	}

	result = &ImportResult{Query: query, Found: len(meals), Imported: []ImportedRecipe{}}
	for _, meal := range meals {
		if len(result.Imported) >= limit {
			break
		}
		if len(meal.Ingredients) == 0 {
			continue
		}

		recipe, ingredients := meal.ToRecipe(ownerID)
		id, err := im.writer.SaveRecipe(ctx, recipe, ingredients)
		if err != nil {
			return nil, common.ErrStoreUnavailable.Wrap(fmt.Errorf("save recipe %q: %w", meal.Name, err))
		}
		result.Imported = append(result.Imported, ImportedRecipe{
			RecipeID:    id,
			Name:        meal.Name,
			MealID:      meal.ID,
			Ingredients: len(ingredients),
		})
	}

	common.LogInfo("MealDB 匯入完成",
		zap.String("query", query),
		zap.Int("found", result.Found),
		zap.Int("imported", len(result.Imported)),
	)
	return result, nil
}
