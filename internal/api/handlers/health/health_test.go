package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pantry-recommender/internal/core/cache"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeStats struct{}

func (fakeStats) GetStats() cache.Stats { return cache.Stats{Size: 3, MaxSize: 10} }

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", LivenessCheck)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newRouter(NewHandler("1.2.3", "memory", fakePinger{}, fakeStats{}))

	w := get(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" || !resp.Store.Healthy || resp.Store.Backend != "memory" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Cache == nil || resp.Cache.Size != 3 {
		t.Errorf("cache = %+v", resp.Cache)
	}
}

func TestHealthCheckStoreDown(t *testing.T) {
	r := newRouter(NewHandler("1.0.0", "redis", fakePinger{err: errors.New("connection refused")}, nil))

	w := get(r, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", w.Code)
	}
	var resp HealthResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "degraded" || resp.Store.Healthy || resp.Cache != nil {
		t.Errorf("resp = %+v", resp)
	}

	if w := get(r, "/ready"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", w.Code)
	}
	if w := get(r, "/live"); w.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", w.Code)
	}
}

func TestReadinessCheck(t *testing.T) {
	r := newRouter(NewHandler("1.0.0", "memory", fakePinger{}, nil))
	if w := get(r, "/ready"); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
