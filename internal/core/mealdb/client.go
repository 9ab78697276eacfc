package mealdb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// serviceName 日誌中的外部服務名稱
const serviceName = "themealdb"

// Client TheMealDB 客戶端
type Client struct {
	client *resty.Client
}

// mealsResponse search.php / lookup.php / random.php 的回應
type mealsResponse struct {
	Meals []rawMeal `json:"meals"`
}

// NewClient 創建 TheMealDB 客戶端
func NewClient(cfg config.MealDBConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// Search 依名稱搜尋菜餚
func (c *Client) Search(ctx context.Context, query string) ([]Meal, error) {
	return c.fetch(ctx, "/search.php", map[string]string{"s": query})
}

// Lookup 依 MealDB ID 取得菜餚，不存在時回傳 nil
func (c *Client) Lookup(ctx context.Context, id string) (*Meal, error) {
	meals, err := c.fetch(ctx, "/lookup.php", map[string]string{"i": id})
	if err != nil || len(meals) == 0 {
		return nil, err
	}
	return &meals[0], nil
}

// Random 隨機取得一道菜餚
func (c *Client) Random(ctx context.Context) (*Meal, error) {
	meals, err := c.fetch(ctx, "/random.php", nil)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("no meal data in TheMealDB response")
	}
	return &meals[0], nil
}

func (c *Client) fetch(ctx context.Context, path string, params map[string]string) ([]Meal, error) {
	start := time.Now()
	meals, err := c.doFetch(ctx, path, params)
	common.LogUpstreamCall(serviceName, time.Since(start), err)
	return meals, err
}

func (c *Client) doFetch(ctx context.Context, path string, params map[string]string) ([]Meal, error) {
	var result mealsResponse

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to TheMealDB: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("TheMealDB returned status %d: %s", resp.StatusCode(), resp.String())
	}

	// 解析回應，meals 為 null 代表沒有結果
	meals := make([]Meal, 0, len(result.Meals))
	for _, raw := range result.Meals {
		meal, err := parseMeal(raw)
		if err != nil {
			common.LogWarn("略過無法解析的菜餚", zap.Error(err))
			continue
		}
		meals = append(meals, meal)
	}
	return meals, nil
}
