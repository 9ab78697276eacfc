package mealdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantry-recommender/internal/core/store"
	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/models"
	"pantry-recommender/internal/pkg/common"
)

const searchBody = `{"meals":[
	{"idMeal":"52772","strMeal":"Teriyaki Chicken Casserole","strCategory":"Chicken","strArea":"Japanese",
	 "strInstructions":"Preheat oven to 350 F. Combine soy sauce and water.","strMealThumb":"https://example.com/t.jpg",
	 "strTags":"Meat,Casserole","strYoutube":"","strSource":null,
	 "strIngredient1":"soy sauce","strMeasure1":"3/4 cup",
	 "strIngredient2":"chicken breasts","strMeasure2":"2",
	 "strIngredient3":"","strMeasure3":"",
	 "strIngredient4":null,"strMeasure4":null},
	{"idMeal":"52807","strMeal":"Baingan Bharta","strCategory":"Vegetarian","strArea":"Indian",
	 "strInstructions":"Rub oil on the aubergine.","strTags":"Vegan,Spicy",
	 "strIngredient1":"Aubergine","strMeasure1":"1 large",
	 "strIngredient2":"Salt","strMeasure2":""},
	{"idMeal":"","strMeal":"Broken"}
]}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.MealDBConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	c.client.SetRetryCount(0)
	return c
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestClientSearch(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("s")
		jsonHandler(searchBody)(w, r)
	})

	meals, err := c.Search(context.Background(), "chicken")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotPath != "/search.php" || gotQuery != "chicken" {
		t.Errorf("request = %s?s=%s", gotPath, gotQuery)
	}
	if len(meals) != 2 {
		t.Fatalf("len(meals) = %d, want 2 (broken meal skipped)", len(meals))
	}

	m := meals[0]
	if m.ID != "52772" || m.Area != "Japanese" || len(m.Ingredients) != 2 {
		t.Errorf("meal = %+v", m)
	}
	if m.Ingredients[0] != (Ingredient{Name: "soy sauce", Measure: "3/4 cup"}) {
		t.Errorf("ingredient = %+v", m.Ingredients[0])
	}
	if len(m.Tags) != 2 || m.Tags[1] != "Casserole" {
		t.Errorf("tags = %v", m.Tags)
	}
}

func TestClientSearchNoResults(t *testing.T) {
	c := newTestServer(t, jsonHandler(`{"meals":null}`))
	meals, err := c.Search(context.Background(), "zzz")
	if err != nil || len(meals) != 0 {
		t.Errorf("Search() = %v, %v, want empty", meals, err)
	}
}

func TestClientUpstreamError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, err := c.Search(context.Background(), "chicken"); err == nil {
		t.Error("expected error on 500")
	}
}

func TestClientLookupAndRandom(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lookup.php":
			if r.URL.Query().Get("i") != "52772" {
				jsonHandler(`{"meals":null}`)(w, r)
				return
			}
			jsonHandler(searchBody)(w, r)
		case "/random.php":
			jsonHandler(`{"meals":null}`)(w, r)
		}
	})

	meal, err := c.Lookup(context.Background(), "52772")
	if err != nil || meal == nil || meal.ID != "52772" {
		t.Errorf("Lookup() = %+v, %v", meal, err)
	}
	if meal, err := c.Lookup(context.Background(), "1"); meal != nil || err != nil {
		t.Errorf("Lookup(missing) = %+v, %v", meal, err)
	}
	if _, err := c.Random(context.Background()); err == nil {
		t.Error("Random() with no meals should fail")
	}
}

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		qty  float64
		unit string
	}{
		{"200 g", 200, "g"},
		{"200g", 200, "g"},
		{"1/2 cup", 0.5, "cup"},
		{"1 1/2 tbsp", 1.5, "tbsp"},
		{"3/4 cup", 0.75, "cup"},
		{"2", 2, "unit"},
		{"Pinch", 1, "pinch"},
		{"", 1, "to taste"},
		{"  ", 1, "to taste"},
		{"1 large", 1, "large"},
		{"2.5 kg", 2.5, "kg"},
	}
	for _, tt := range tests {
		qty, unit := ParseMeasure(tt.in)
		if qty != tt.qty || unit != tt.unit {
			t.Errorf("ParseMeasure(%q) = %v, %q, want %v, %q", tt.in, qty, unit, tt.qty, tt.unit)
		}
	}
}

func TestMealToRecipe(t *testing.T) {
	meal := Meal{
		ID:           "52807",
		Name:         "Baingan Bharta",
		Category:     "Vegetarian",
		Area:         "Indian",
		Instructions: "Rub oil on the aubergine.",
		Tags:         []string{"Vegan", "Spicy"},
		Ingredients:  []Ingredient{{Name: "Aubergine", Measure: "1 large"}, {Name: "Salt"}},
	}
	owner := int64(5)
	recipe, ings := meal.ToRecipe(&owner)

	if recipe.OwnerID == nil || *recipe.OwnerID != 5 || recipe.Name != "Baingan Bharta" {
		t.Errorf("recipe = %+v", recipe)
	}
	if recipe.CuisineType == nil || *recipe.CuisineType != "indian" {
		t.Errorf("CuisineType = %v", recipe.CuisineType)
	}
	if len(recipe.DietaryTags) != 2 || recipe.DietaryTags[0] != "vegetarian" || recipe.DietaryTags[1] != "vegan" {
		t.Errorf("DietaryTags = %v", recipe.DietaryTags)
	}
	// 250 * (1 + (2-5)*0.1) = 175
	if recipe.EstimatedCalories == nil || *recipe.EstimatedCalories != 175 {
		t.Errorf("EstimatedCalories = %v", recipe.EstimatedCalories)
	}
	// 35 * 0.8 * 0.9 = 25.2
	if recipe.PreparationTimeMinutes == nil || *recipe.PreparationTimeMinutes != 25 {
		t.Errorf("PreparationTimeMinutes = %v", recipe.PreparationTimeMinutes)
	}
	if len(ings) != 2 || ings[1].RequiredUnit != "to taste" || ings[1].RequiredQuantity != 1 {
		t.Errorf("ingredients = %+v", ings)
	}
	if recipe.ImageURL != nil {
		t.Error("ImageURL should be nil without thumbnail")
	}

	plain, _ := Meal{ID: "1", Name: "Mystery", Area: "Unknown"}.ToRecipe(nil)
	if plain.DietaryTags != nil || plain.CuisineType != nil || plain.PreparationTimeMinutes != nil || !plain.IsShared() {
		t.Errorf("plain recipe = %+v", plain)
	}
}

// fakeSearcher 回傳固定結果
type fakeSearcher struct {
	meals []Meal
	err   error
}

func (f fakeSearcher) Search(context.Context, string) ([]Meal, error) {
	return f.meals, f.err
}

func TestImporter(t *testing.T) {
	meals := []Meal{
		{ID: "1", Name: "Omelette", Ingredients: []Ingredient{{Name: "egg", Measure: "3"}}},
		{ID: "2", Name: "Empty"},
		{ID: "3", Name: "Rice Bowl", Ingredients: []Ingredient{{Name: "rice", Measure: "1 cup"}}},
		{ID: "4", Name: "Toast", Ingredients: []Ingredient{{Name: "bread", Measure: "2 slices"}}},
	}
	mem := store.NewMemoryStore()
	im := NewImporter(fakeSearcher{meals: meals}, mem, 10)

	result, err := im.Import(context.Background(), "egg", nil, 2)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Found != 4 || len(result.Imported) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Imported[0].Name != "Omelette" || result.Imported[1].Name != "Rice Bowl" {
		t.Errorf("imported = %+v", result.Imported)
	}

	recipes, _ := mem.ListRecipes(context.Background(), 99)
	if len(recipes) != 2 || !recipes[0].IsShared() {
		t.Errorf("stored recipes = %+v", recipes)
	}
	ings, _ := mem.ListIngredients(context.Background(), []int64{result.Imported[0].RecipeID})
	if got := ings[result.Imported[0].RecipeID]; len(got) != 1 || got[0].RequiredQuantity != 3 {
		t.Errorf("stored ingredients = %+v", got)
	}
}

func TestImporterOwnedRecipes(t *testing.T) {
	mem := store.NewMemoryStore()
	im := NewImporter(fakeSearcher{meals: []Meal{{ID: "1", Name: "Soup", Ingredients: []Ingredient{{Name: "onion"}}}}}, mem, 1)
	owner := int64(3)

	if _, err := im.Import(context.Background(), "soup", &owner, 0); err != nil {
		t.Fatal(err)
	}
	if recipes, _ := mem.ListRecipes(context.Background(), 4); len(recipes) != 0 {
		t.Errorf("other user sees %+v", recipes)
	}
	if recipes, _ := mem.ListRecipes(context.Background(), 3); len(recipes) != 1 {
		t.Errorf("owner sees %+v", recipes)
	}
}

func TestImporterUpstreamError(t *testing.T) {
	im := NewImporter(fakeSearcher{err: errors.New("timeout")}, store.NewMemoryStore(), 5)
	_, err := im.Import(context.Background(), "x", nil, 1)

	var ce *common.CustomError
	if !errors.As(err, &ce) || ce.Code != common.ErrImportFailed.Code {
		t.Errorf("error = %v, want IMPORT_FAILED", err)
	}
}

// failingWriter 寫入一律失敗
type failingWriter struct{}

func (failingWriter) SaveRecipe(context.Context, models.Recipe, []models.RecipeIngredient) (int64, error) {
	return 0, errors.New("disk full")
}

func TestImporterWriteError(t *testing.T) {
	im := NewImporter(fakeSearcher{meals: []Meal{{ID: "1", Name: "Soup", Ingredients: []Ingredient{{Name: "onion"}}}}}, failingWriter{}, 5)
	_, err := im.Import(context.Background(), "soup", nil, 1)

	var ce *common.CustomError
	if !errors.As(err, &ce) || ce.Code != common.ErrStoreUnavailable.Code {
		t.Errorf("error = %v, want STORE_UNAVAILABLE", err)
	}
}
