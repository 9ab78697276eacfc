package store

import (
	"context"
	"fmt"
	"os"

	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// LoadSeedFile 讀取 JSON 初始資料檔
func LoadSeedFile(path string) (SeedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	var data SeedData
	if err := common.DecodeJSON(f, &data); err != nil {
		return SeedData{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return data, nil
}

// SeedFromFile 讀取初始資料並寫入儲存
func SeedFromFile(ctx context.Context, s Seeder, path string) error {
	data, err := LoadSeedFile(path)
	if err != nil {
		return err
	}
	if err := s.Seed(ctx, data); err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	common.LogInfo("初始資料已載入",
		zap.String("file", path),
		zap.Int("pantry_items", len(data.PantryItems)),
		zap.Int("recipes", len(data.Recipes)),
		zap.Int("preferences", len(data.Preferences)),
	)
	return nil
}
