package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/internal/api/handler"
	"github.com/maamriaabderahmene/greve-ensta/internal/api/middleware"
	"github.com/maamriaabderahmene/greve-ensta/internal/dto"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
	"github.com/maamriaabderahmene/greve-ensta/pkg/redis"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流与 Token 黑名单降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Server.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	// 仅信任配置的反向代理，其余请求以连接地址作为 ClientIP
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", healthHandler(db, rdb))

	// ── Prometheus 指标 ──
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	limiter := middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学生端公共接口（无需认证，限流）
		public := v1.Group("")
		public.Use(limiter)
		{
			public.POST("/attendance/mark", h.CheckIn.CheckIn)

			public.GET("/ip", h.IP.ClientIP)
			public.POST("/ip/register", h.IP.Register)
			public.GET("/ip/status", h.IP.Status)

			public.POST("/antifraud/private-check", h.AntiFraud.PrivateCheck)

			public.GET("/sessions/current", h.Session.Current)
			public.GET("/sessions/calendar.ics", h.Session.CalendarICS)

			public.POST("/auth/login", h.Auth.Login)
		}

		// 管理端（需要认证）
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger), middleware.RoleAuth(service.RoleAdmin))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			admin := authorized.Group("/admin")
			{
				// 时段开关
				admin.GET("/session-control", h.SessionGate.List)
				admin.POST("/session-control", h.SessionGate.Set)

				// 手动补录
				admin.POST("/attendance", h.CheckIn.AddManual)

				// 签到地点
				locations := admin.Group("/locations")
				{
					locations.GET("", h.Location.ListLocations)
					locations.GET("/:id", h.Location.GetLocation)
					locations.POST("", h.Location.CreateLocation)
					locations.PUT("/:id", h.Location.UpdateLocation)
					locations.DELETE("/:id", h.Location.DeleteLocation)
				}

				// 学生查询
				students := admin.Group("/students")
				{
					students.GET("", h.Student.ListStudents)
					students.GET("/:email", h.Student.GetStudent)
				}
			}
		}
	}

	return r, nil
}

// healthHandler 检查数据库与 Redis 连通性；Redis 为可选依赖，不影响整体状态
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "up", "redis": "disabled"}

		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "down"
			}
		}

		if rdb != nil {
			body["redis"] = "up"
			if !rdb.Healthy(ctx) {
				body["redis"] = "down"
			}
		}

		c.JSON(status, body)
	}
}
