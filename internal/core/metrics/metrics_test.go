package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("ok"))
	RecordRecommendation("ok", 5*time.Millisecond, 10, 3)
	after := testutil.ToFloat64(RecommendRequestsTotal.WithLabelValues("ok"))
	if after-before != 1 {
		t.Errorf("recommend_requests_total{outcome=ok} delta = %v, want 1", after-before)
	}
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("pantry"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("pantry"))
	evictions := testutil.ToFloat64(CacheEvictions)

	RecordCacheHit("pantry")
	RecordCacheHit("pantry")
	RecordCacheMiss("pantry")
	RecordCacheEviction(3)

	if d := testutil.ToFloat64(CacheHits.WithLabelValues("pantry")) - hits; d != 2 {
		t.Errorf("hits delta = %v, want 2", d)
	}
	if d := testutil.ToFloat64(CacheMisses.WithLabelValues("pantry")) - misses; d != 1 {
		t.Errorf("misses delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(CacheEvictions) - evictions; d != 3 {
		t.Errorf("evictions delta = %v, want 3", d)
	}
}

func TestRecordImport(t *testing.T) {
	success := testutil.ToFloat64(MealDBImports.WithLabelValues("success"))
	failed := testutil.ToFloat64(MealDBImports.WithLabelValues("error"))
	imported := testutil.ToFloat64(MealDBRecipesImported)

	RecordImport(4, nil)
	RecordImport(0, errors.New("upstream down"))

	if d := testutil.ToFloat64(MealDBImports.WithLabelValues("success")) - success; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(MealDBImports.WithLabelValues("error")) - failed; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(MealDBRecipesImported) - imported; d != 4 {
		t.Errorf("imported delta = %v, want 4", d)
	}
}
