package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/maamriaabderahmene/greve-ensta/config"
	"github.com/maamriaabderahmene/greve-ensta/internal/api/handler"
	"github.com/maamriaabderahmene/greve-ensta/internal/api/router"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	"github.com/maamriaabderahmene/greve-ensta/internal/service"
	"github.com/maamriaabderahmene/greve-ensta/pkg/database"
	"github.com/maamriaabderahmene/greve-ensta/pkg/jwt"
	applogger "github.com/maamriaabderahmene/greve-ensta/pkg/logger"
	"github.com/maamriaabderahmene/greve-ensta/pkg/metrics"
	"github.com/maamriaabderahmene/greve-ensta/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("GEOATT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("timezone", cfg.Attendance.Timezone),
		zap.Bool("gate_fail_open", cfg.SessionGate.FailOpen),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流与 Token 黑名单将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与指标
	jwtMgr := jwt.NewManager(&cfg.Auth)
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New(nil)
	}

	// 6. 依赖注入: Repository → Service → Handler
	// rdb 为 nil 时不能直接作为接口传入，否则接口非 nil
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, jwtMgr, blacklist, recorder, logger)
	if err != nil {
		logger.Fatal("初始化业务层失败", zap.Error(err))
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureBootstrapAdmin(bootCtx); err != nil {
		logger.Error("创建初始管理员失败", zap.Error(err))
	}
	bootCancel()

	h := handler.NewHandler(cfg, svc)

	// 7. 初始化路由
	engine, err := router.Setup(cfg, h, jwtMgr, rdb, db, logger)
	if err != nil {
		logger.Fatal("初始化路由失败", zap.Error(err))
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 进行中的签到请求在此期间完成；已提交的写入不会回滚
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
