package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret",
		AccessTokenTTL: time.Hour,
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth / RoleAuth ──

func setupAuthRouter(mgr *jwt.Manager, roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", JWTAuth(mgr, nil, zap.NewNop()), RoleAuth(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_email"))
	})
	return r
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	r := setupAuthRouter(newTestJWT(), "admin")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	r := setupAuthRouter(newTestJWT(), "admin")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Token abc")

	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestJWTAuth_ValidToken(t *testing.T) {
	mgr := newTestJWT()
	token, err := mgr.GenerateAccessToken("admin-1", "admin@ensta.edu.dz", "admin")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}
	r := setupAuthRouter(mgr, "admin")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "admin@ensta.edu.dz" {
		t.Errorf("上下文未注入管理员邮箱: %q", w.Body.String())
	}
}

func TestJWTAuth_ForeignSecret(t *testing.T) {
	other := jwt.NewManager(&config.AuthConfig{JWTSecret: "another-secret-key!!", AccessTokenTTL: time.Hour})
	token, _ := other.GenerateAccessToken("admin-1", "admin@ensta.edu.dz", "admin")
	r := setupAuthRouter(newTestJWT(), "admin")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if w := serve(r, req); w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestRoleAuth_Forbidden(t *testing.T) {
	mgr := newTestJWT()
	token, _ := mgr.GenerateAccessToken("u-1", "viewer@ensta.edu.dz", "viewer")
	r := setupAuthRouter(mgr, "admin")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if w := serve(r, req); w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

// ── RateLimit ──

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/attendance/mark", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/attendance/mark", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("第 %d 次请求期望放行，实际 %d", i+1, w.Code)
		}
	}
}

// ── RequestID / Logger ──

func TestRateLimitKey_IgnoresForgedForwardedFor(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		xff     string
		wantIP  string
	}{
		{"未配置代理时忽略转发头", nil, "198.51.100.7:4321", "203.0.113.5", "198.51.100.7"},
		{"受信代理转发", []string{"10.0.0.0/8"}, "10.0.0.9:4321", "203.0.113.5", "203.0.113.5"},
		{"非受信来源伪造", []string{"10.0.0.0/8"}, "198.51.100.7:4321", "203.0.113.5", "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			if err := r.SetTrustedProxies(tt.trusted); err != nil {
				t.Fatalf("SetTrustedProxies 失败: %v", err)
			}
			var key string
			r.GET("/api/v1/attendance/mark", func(c *gin.Context) {
				key = rateLimitKey(c)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/mark", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", tt.xff)
			r.ServeHTTP(httptest.NewRecorder(), req)

			want := "rate_limit:" + tt.wantIP + ":/api/v1/attendance/mark"
			if key != want {
				t.Errorf("期望 %s，实际 %s", want, key)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := serve(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用外部 Request-ID，实际 %q", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	w = serve(r, req)
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("超长 Request-ID 应替换为 UUID，实际 %q", got)
	}
}

// ── BodyLimit ──

func TestBodyLimit_DeclaredLengthTooLarge(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("a", 32)))
	if w := serve(r, req); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("ok"))
	if w := serve(r, req); w.Code != http.StatusNoContent {
		t.Errorf("期望 204，实际 %d", w.Code)
	}
}

// ── CORS ──

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://attendance.ensta.edu.dz/"}))
	r.POST("/attendance/mark", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/attendance/mark", nil)
	req.Header.Set("Origin", "https://attendance.ensta.edu.dz")
	w := serve(r, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://attendance.ensta.edu.dz" {
		t.Error("允许的来源应回写 Access-Control-Allow-Origin")
	}
}
