package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 限流器 ====================

func TestLimiter_Check(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := "shop:1:orders"

	result := limiter.Check(key, time.Minute)
	if !result.Allowed {
		t.Fatal("首次检查应该放行")
	}

	result = limiter.Check(key, time.Minute)
	if result.Allowed {
		t.Fatal("冷却期内应该拒绝")
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Minute {
		t.Errorf("retry_after = %v", result.RetryAfter)
	}

	// 不同 key 互不影响
	if !limiter.Check("shop:2:orders", time.Minute).Allowed {
		t.Error("不同店铺不应互相限流")
	}

	limiter.Reset(key)
	if !limiter.Check(key, time.Minute).Allowed {
		t.Error("重置后应该放行")
	}
}

func TestLimiter_IntervalElapsed(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := "shop:1:products"

	limiter.Check(key, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if !limiter.Check(key, 10*time.Millisecond).Allowed {
		t.Error("冷却期过后应该放行")
	}
}

// ==================== 中间件 ====================

func newLimitedRouter(syncType SyncType, interval time.Duration) *gin.Engine {
	r := gin.New()
	r.POST("/sync/:shop_id", SyncRateLimit(syncType, interval), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200})
	})
	return r
}

func TestSyncRateLimit_PerShop(t *testing.T) {
	r := newLimitedRouter(SyncTypeOrder, time.Minute)
	defer GetLimiter().Reset(ShopSyncKey(11, SyncTypeOrder))
	defer GetLimiter().Reset(ShopSyncKey(12, SyncTypeOrder))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/11", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("首次请求 = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/11", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("冷却期内 = %d, want 429", w.Code)
	}

	// 另一个店铺不受影响
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("其他店铺 = %d, want 200", w.Code)
	}
}

func TestSyncRateLimit_BadShopID(t *testing.T) {
	r := newLimitedRouter(SyncTypeProduct, time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sync/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法店铺 ID = %d, want 400", w.Code)
	}
}

func TestFormatRetryMessage(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "同步冷却中，请 30 秒后重试"},
		{2 * time.Minute, "同步冷却中，请 2 分钟后重试"},
		{90 * time.Second, "同步冷却中，请 1 分 30 秒后重试"},
	}
	for _, tc := range cases {
		if got := formatRetryMessage(tc.d); got != tc.want {
			t.Errorf("formatRetryMessage(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
