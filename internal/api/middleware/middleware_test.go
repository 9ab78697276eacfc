package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	r.GET("/ping", ok)
	r.POST("/ping", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	return r
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerIP(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	r := newRouter(RateLimit(limiter, time.Minute))

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := do(r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Errorf("third request: status = %d, Retry-After = %q", w.Code, w.Header().Get("Retry-After"))
	}

	// 其他 IP 不受影響
	if !limiter.Allow("10.0.0.2") {
		t.Error("other IP should be allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	limiter.Allow("10.0.0.1")
	limiter.cleanup(time.Now().Add(time.Second))
	if len(limiter.limiters) != 0 {
		t.Errorf("limiters = %d, want 0", len(limiter.limiters))
	}
	// 清除後重新取得完整令牌
	if !limiter.Allow("10.0.0.1") {
		t.Error("fresh limiter should allow")
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newRouter(BodySizeLimit(8))
	if w := do(r, http.MethodPost, "/ping", `{"query":"chicken"}`, nil); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
	if w := do(r, http.MethodPost, "/ping", `{}`, nil); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Stop()
	r := newRouter(Deduplication(d))

	body := `{"query":"soup"}`
	if w := do(r, http.MethodPost, "/ping", body, map[string]string{UserIDHeader: "1"}); w.Code != http.StatusOK {
		t.Fatalf("first: %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/ping", body, map[string]string{UserIDHeader: "1"}); w.Code != http.StatusTooManyRequests {
		t.Errorf("duplicate: %d, want 429", w.Code)
	}
	if w := do(r, http.MethodPost, "/ping", body, map[string]string{UserIDHeader: "2"}); w.Code != http.StatusOK {
		t.Errorf("other user: %d, want 200", w.Code)
	}
	if w := do(r, http.MethodPost, "/ping", `{"query":"stew"}`, map[string]string{UserIDHeader: "1"}); w.Code != http.StatusOK {
		t.Errorf("different body: %d, want 200", w.Code)
	}
	// GET 不去重
	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
			t.Errorf("GET %d: %d", i, w.Code)
		}
	}
}

func TestDeduplicationWindowExpires(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	if d.seen("fp") {
		t.Fatal("first request reported as duplicate")
	}
	now = now.Add(2 * time.Second)
	if d.seen("fp") {
		t.Error("request after window reported as duplicate")
	}

	now = now.Add(time.Minute)
	d.cleanup()
	if len(d.requests) != 0 {
		t.Errorf("requests = %d after cleanup", len(d.requests))
	}
}

func TestRecovery(t *testing.T) {
	r := newRouter(Recovery(), Logger())
	w := do(r, http.MethodGet, "/panic", "", nil)
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestTimeout(t *testing.T) {
	r := newRouter(Timeout(20 * time.Millisecond))
	w := do(r, http.MethodGet, "/slow", "", nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", w.Code)
	}

	if w := do(r, http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
		t.Errorf("fast request: %d", w.Code)
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Minute))
	var deadline bool
	r.GET("/", func(c *gin.Context) {
		_, deadline = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})
	do(r, http.MethodGet, "/", "", nil)
	if !deadline {
		t.Error("request context has no deadline")
	}
}
