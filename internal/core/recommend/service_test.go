package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantry-recommender/internal/core/store"
	"pantry-recommender/internal/models"
)

// fakeStore 可注入錯誤的測試儲存
type fakeStore struct {
	*store.MemoryStore
	recipesErr error
	panicOn    string
	prefsCalls int
}

func (f *fakeStore) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	if f.panicOn == "recipes" {
		panic("boom")
	}
	if f.recipesErr != nil {
		return nil, f.recipesErr
	}
	return f.MemoryStore.ListRecipes(ctx, userID)
}

func (f *fakeStore) GetPreferences(ctx context.Context, userID int64) (*models.UserPreference, error) {
	f.prefsCalls++
	return f.MemoryStore.GetPreferences(ctx, userID)
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	mem := store.NewMemoryStore()
	expires := today.AddDays(2)
	err := mem.Seed(context.Background(), store.SeedData{
		PantryItems: []models.PantryItem{
			{ID: 1, UserID: 1, Name: "Frango", Quantity: 500, Unit: "g", ExpirationDate: &expires},
			{ID: 2, UserID: 1, Name: "arroz", Quantity: 1, Unit: "kg"},
		},
		Recipes: []store.SeedRecipe{
			{
				Recipe:      models.Recipe{ID: 1, Name: "Chicken Rice", CuisineType: strPtr("asian")},
				Ingredients: ingredients(1, "chicken", "rice"),
			},
			{
				Recipe:      models.Recipe{ID: 2, Name: "Chicken Parmesan", CuisineType: strPtr("italian")},
				Ingredients: ingredients(2, "chicken breast", "tomato sauce", "parmesan"),
			},
		},
		Preferences: []models.UserPreference{{UserID: 1, PreferredCuisines: []string{"italian"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &fakeStore{MemoryStore: mem}
}

func newTestService(st store.Store) *Service {
	return NewService(st, newTestEngine(), WithClock(func() time.Time { return today.Time().Add(10 * time.Hour) }))
}

func TestServiceRecommend(t *testing.T) {
	st := newFakeStore(t)
	svc := newTestService(st)

	resp := svc.Recommend(context.Background(), 1, Request{Sort: DefaultSort()})
	if resp.Outcome != OutcomeOK {
		t.Fatalf("outcome = %q, message = %v", resp.Outcome, resp.Message)
	}
	if got := ids(resp.Recommendations); !equalIDs(got, []int64{1, 2}) {
		t.Errorf("recommendations = %v, want [1 2]", got)
	}
	if st.prefsCalls != 0 {
		t.Error("preferences should not be loaded when disabled")
	}

	first := resp.Recommendations[0]
	if len(first.ExpiringIngredientsUsed) != 1 || first.ExpiringIngredientsUsed[0].DaysUntilExpiration != 2 {
		t.Errorf("expiring = %+v", first.ExpiringIngredientsUsed)
	}
}

func TestServiceUsesPreferences(t *testing.T) {
	svc := newTestService(newFakeStore(t))

	resp := svc.Recommend(context.Background(), 1, DefaultRequest())
	if !resp.Metadata.UsedPreferences {
		t.Fatal("stored preferences should be used")
	}
	// 偏好菜系為 italian，asian 食譜被排除
	if got := ids(resp.Recommendations); !equalIDs(got, []int64{2}) {
		t.Errorf("recommendations = %v, want [2]", got)
	}
}

func TestServiceMissingPreferencesBehaveAsDisabled(t *testing.T) {
	st := newFakeStore(t)
	_ = st.Seed(context.Background(), store.SeedData{
		PantryItems: []models.PantryItem{{ID: 9, UserID: 2, Name: "rice"}},
	})
	svc := newTestService(st)

	resp := svc.Recommend(context.Background(), 2, DefaultRequest())
	if resp.Metadata.UsedPreferences || resp.Outcome != OutcomeOK {
		t.Errorf("resp = %+v", resp)
	}
	if got := ids(resp.Recommendations); !equalIDs(got, []int64{1}) {
		t.Errorf("recommendations = %v, want [1]", got)
	}
}

func TestServiceEmptyPantry(t *testing.T) {
	svc := newTestService(newFakeStore(t))
	resp := svc.Recommend(context.Background(), 42, DefaultRequest())
	if resp.Outcome != OutcomeEmptyPantry || resp.Message == nil || resp.Metadata.TotalRecipesAnalyzed != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestServiceStoreErrorReturnsEmptyResponse(t *testing.T) {
	st := newFakeStore(t)
	st.recipesErr = errors.New("connection refused")
	svc := newTestService(st)

	resp := svc.Recommend(context.Background(), 1, DefaultRequest())
	if resp == nil || resp.Outcome != OutcomeError || resp.Message == nil || len(resp.Recommendations) != 0 {
		t.Errorf("resp = %+v", resp)
	}
	if *resp.Message != DefaultMessages().InternalError {
		t.Errorf("Message = %q", *resp.Message)
	}
}

func TestServicePanicReturnsEmptyResponse(t *testing.T) {
	st := newFakeStore(t)
	st.panicOn = "recipes"
	svc := newTestService(st)

	resp := svc.Recommend(context.Background(), 1, DefaultRequest())
	if resp == nil || resp.Outcome != OutcomeError || resp.Recommendations == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestServiceCanceledContext(t *testing.T) {
	svc := newTestService(newFakeStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := svc.Recommend(ctx, 1, DefaultRequest())
	if resp.Outcome != OutcomeError {
		t.Errorf("outcome = %q, want error", resp.Outcome)
	}
}
