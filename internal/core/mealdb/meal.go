package mealdb

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"pantry-recommender/internal/models"
)

// maxIngredients MealDB 每道菜最多 20 組 strIngredientN/strMeasureN
const maxIngredients = 20

// defaultUnit 沒有份量描述時的單位
const defaultUnit = "to taste"

// Meal MealDB 菜餚
type Meal struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	ImageURL     string
	Tags         []string
	YoutubeURL   string
	SourceURL    string
	Ingredients  []Ingredient
}

// Ingredient MealDB 食材與份量原文
type Ingredient struct {
	Name    string
	Measure string
}

// rawMeal API 回傳的原始欄位，值可能為 null
type rawMeal map[string]*string

func (r rawMeal) get(key string) string {
	if v := r[key]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// parseMeal 解析 API 回傳的菜餚
func parseMeal(raw rawMeal) (Meal, error) {
	m := Meal{
		ID:           raw.get("idMeal"),
		Name:         raw.get("strMeal"),
		Category:     raw.get("strCategory"),
		Area:         raw.get("strArea"),
		Instructions: raw.get("strInstructions"),
		ImageURL:     raw.get("strMealThumb"),
		YoutubeURL:   raw.get("strYoutube"),
		SourceURL:    raw.get("strSource"),
	}
	if m.ID == "" || m.Name == "" {
		return Meal{}, fmt.Errorf("meal is missing idMeal or strMeal")
	}

	for _, tag := range strings.Split(raw.get("strTags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			m.Tags = append(m.Tags, tag)
		}
	}

	for i := 1; i <= maxIngredients; i++ {
		name := raw.get(fmt.Sprintf("strIngredient%d", i))
		if name == "" {
			continue
		}
		m.Ingredients = append(m.Ingredients, Ingredient{
			Name:    name,
			Measure: raw.get(fmt.Sprintf("strMeasure%d", i)),
		})
	}
	return m, nil
}

// ParseMeasure 將份量描述拆為數量與單位
// "200 g" → 200, "g"；"1 1/2 cups" → 1.5, "cups"；"pinch" → 1, "pinch"；空字串 → 1, "to taste"
func ParseMeasure(measure string) (float64, string) {
	fields := strings.Fields(measure)
	if len(fields) == 0 {
		return 1, defaultUnit
	}

	var qty float64
	var parsed bool
	i := 0
	for ; i < len(fields) && i < 2; i++ {
		v, ok := parseNumber(fields[i])
		if !ok {
			break
		}
		qty += v
		parsed = true
	}

	// "200g" 數字與單位相連
	if !parsed {
		if num, unit, ok := splitNumberPrefix(fields[0]); ok {
			qty, parsed = num, true
			fields[0] = unit
		}
	}

	unit := strings.Join(fields[i:], " ")
	if !parsed {
		return 1, strings.ToLower(measure)
	}
	if unit == "" {
		unit = "unit"
	}
	return qty, unit
}

// parseNumber 支援整數、小數與分數
func parseNumber(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func splitNumberPrefix(s string) (float64, string, bool) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '/'
	})
	if end <= 0 {
		return 0, "", false
	}
	v, ok := parseNumber(s[:end])
	if !ok {
		return 0, "", false
	}
	return v, s[end:], true
}

// 依分類估算熱量與準備時間，MealDB 不提供這些資料
var (
	categoryCalories = map[string]int{
		"Beef": 400, "Chicken": 300, "Dessert": 500, "Lamb": 450, "Miscellaneous": 250,
		"Pasta": 350, "Pork": 400, "Seafood": 250, "Side": 150, "Starter": 200,
		"Vegan": 200, "Vegetarian": 250, "Breakfast": 300, "Goat": 400, "Turkey": 300,
	}
	categoryMinutes = map[string]int{
		"Dessert": 60, "Beef": 90, "Lamb": 90, "Pork": 75, "Chicken": 45,
		"Turkey": 60, "Seafood": 30, "Pasta": 30, "Side": 20, "Starter": 25,
		"Breakfast": 15, "Vegan": 35, "Vegetarian": 35, "Miscellaneous": 40, "Goat": 90,
	}
)

// EstimateCalories 依分類與食材數估算熱量
func EstimateCalories(m Meal) int {
	base, ok := categoryCalories[m.Category]
	if !ok {
		base = 300
	}
	multiplier := 1 + float64(len(m.Ingredients)-5)*0.1
	multiplier = math.Max(0.7, math.Min(multiplier, 2.0))
	return int(float64(base) * multiplier)
}

// EstimatePrepTime 依分類、說明長度與食材數估算準備時間，無說明時回傳 nil
func EstimatePrepTime(m Meal) *int {
	if m.Instructions == "" {
		return nil
	}
	base, ok := categoryMinutes[m.Category]
	if !ok {
		base = 40
	}

	multiplier := 1.0
	switch words := len(strings.Fields(m.Instructions)); {
	case words > 200:
		multiplier = 1.5
	case words > 100:
		multiplier = 1.2
	case words < 50:
		multiplier = 0.8
	}

	switch n := len(m.Ingredients); {
	case n > 15:
		multiplier *= 1.3
	case n > 10:
		multiplier *= 1.1
	case n < 5:
		multiplier *= 0.9
	}

	minutes := int(float64(base) * multiplier)
	return &minutes
}

// dietaryTags 由分類與標籤推得的飲食標籤，無任何標籤時回傳 nil
func dietaryTags(m Meal) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	candidates := append([]string{m.Category}, m.Tags...)
	for _, c := range candidates {
		switch strings.ToLower(c) {
		case "vegan":
			add("vegan")
			add("vegetarian")
		case "vegetarian":
			add("vegetarian")
		case "glutenfree", "gluten-free", "gluten free":
			add("gluten-free")
		case "dairyfree", "dairy-free", "dairy free":
			add("dairy-free")
		}
	}
	return tags
}

// ToRecipe 轉換為食譜與食材，ownerID 為 nil 時為共用食譜
func (m Meal) ToRecipe(ownerID *int64) (models.Recipe, []models.RecipeIngredient) {
	var b strings.Builder
	b.WriteString(m.Instructions)
	if m.YoutubeURL != "" {
		b.WriteString("\n\nVideo tutorial: " + m.YoutubeURL)
	}
	if m.SourceURL != "" {
		b.WriteString("\nOriginal recipe: " + m.SourceURL)
	}
	b.WriteString("\n\nRecipe imported from TheMealDB (ID: " + m.ID + ")")

	calories := EstimateCalories(m)
	recipe := models.Recipe{
		OwnerID:                ownerID,
		Name:                   m.Name,
		Instructions:           b.String(),
		EstimatedCalories:      &calories,
		PreparationTimeMinutes: EstimatePrepTime(m),
		DietaryTags:            dietaryTags(m),
	}
	if m.ImageURL != "" {
		img := m.ImageURL
		recipe.ImageURL = &img
	}
	if m.Area != "" && m.Area != "Unknown" {
		area := strings.ToLower(m.Area)
		recipe.CuisineType = &area
	}

	ingredients := make([]models.RecipeIngredient, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		qty, unit := ParseMeasure(ing.Measure)
		ingredients = append(ingredients, models.RecipeIngredient{
			IngredientName:   ing.Name,
			RequiredQuantity: qty,
			RequiredUnit:     unit,
		})
	}
	return recipe, ingredients
}
