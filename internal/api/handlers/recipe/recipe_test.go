package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pantry-recommender/internal/api/middleware"
	"pantry-recommender/internal/core/mealdb"
	"pantry-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// fakeImporter 記錄呼叫參數
type fakeImporter struct {
	query   string
	ownerID *int64
	limit   int
	err     error
}

func (f *fakeImporter) Import(_ context.Context, query string, ownerID *int64, limit int) (*mealdb.ImportResult, error) {
	f.query, f.ownerID, f.limit = query, ownerID, limit
	if f.err != nil {
		return nil, f.err
	}
	return &mealdb.ImportResult{
		Query:    query,
		Found:    1,
		Imported: []mealdb.ImportedRecipe{{RecipeID: 11, Name: "Soup", MealID: "52772", Ingredients: 3}},
	}, nil
}

func newRouter(importer Importer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/recipes/import", NewHandler(importer, false).HandleImport)
	return r
}

func post(r http.Handler, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/recipes/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body common.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestHandleImport(t *testing.T) {
	fake := &fakeImporter{}
	w := post(newRouter(fake), `{"query":" soup ","max":3}`, "4")

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if fake.query != "soup" || fake.limit != 3 || fake.ownerID == nil || *fake.ownerID != 4 {
		t.Errorf("import args = %q, %v, %d", fake.query, fake.ownerID, fake.limit)
	}

	var result mealdb.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Imported) != 1 || result.Imported[0].RecipeID != 11 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleImportShared(t *testing.T) {
	fake := &fakeImporter{}
	if w := post(newRouter(fake), `{"query":"soup","shared":true}`, "4"); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if fake.ownerID != nil {
		t.Errorf("ownerID = %v, want nil for shared import", *fake.ownerID)
	}
}

func TestHandleImportErrors(t *testing.T) {
	tests := []struct {
		name     string
		importer Importer
		body     string
		userID   string
		status   int
		code     string
	}{
		{"disabled", nil, `{"query":"soup"}`, "1", http.StatusServiceUnavailable, "IMPORT_DISABLED"},
		{"missing user", &fakeImporter{}, `{"query":"soup"}`, "", http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing query", &fakeImporter{}, `{"max":2}`, "1", http.StatusBadRequest, "INVALID_REQUEST"},
		{"blank query", &fakeImporter{}, `{"query":"   "}`, "1", http.StatusBadRequest, "INVALID_REQUEST"},
		{"negative max", &fakeImporter{}, `{"query":"soup","max":-1}`, "1", http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed body", &fakeImporter{}, `{"query":`, "1", http.StatusBadRequest, "INVALID_REQUEST"},
		{"upstream failure", &fakeImporter{err: common.ErrImportFailed.Wrap(errors.New("timeout"))}, `{"query":"soup"}`, "1", http.StatusBadGateway, "IMPORT_FAILED"},
		{"unexpected failure", &fakeImporter{err: errors.New("boom")}, `{"query":"soup"}`, "1", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(tt.importer), tt.body, tt.userID)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}
