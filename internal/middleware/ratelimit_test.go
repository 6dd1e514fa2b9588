package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"rbac/internal/config"

	"github.com/gin-gonic/gin"
)

func rateLimitEnabled() config.RateLimitConfig {
	return config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
}

func TestRateKeyIncludesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var got string
	r := gin.New()
	r.POST("/auth/login", func(c *gin.Context) { got = rateKey("rl", c) })
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.7:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got != "rl:ip:10.0.0.7:route:POST /auth/login" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestAsInt64(t *testing.T) {
	for _, v := range []any{int64(3), 3, float64(3), "3"} {
		if asInt64(v) != 3 {
			t.Fatalf("asInt64(%#v) != 3", v)
		}
	}
	if asInt64(nil) != 0 {
		t.Fatal("nil should convert to 0")
	}
}
