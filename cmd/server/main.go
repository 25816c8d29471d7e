package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "coupon_market/internal/domain/coupon"
	_ "coupon_market/internal/domain/reward"
	_ "coupon_market/internal/domain/user"
	_ "coupon_market/internal/domain/wallet"
	"coupon_market/internal/pkg/config"
	"coupon_market/internal/pkg/middleware"
	"coupon_market/internal/pkg/registry"
	"coupon_market/pkg/database"
	"coupon_market/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	// 1. 配置与日志
	config.LoadConfig()
	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	// 2. 基础设施
	db := database.InitDatabase()
	rdb := database.InitRedis()

	// 3. HTTP 引擎
	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(cors.Default())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 4. 按优先级初始化各业务模块
	moduleCtx := &registry.ModuleContext{DB: db, Redis: rdb, Router: r}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	// 5. 启动与优雅退出
	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", config.GlobalConfig.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}
}
