package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/api"
	"github.com/jengzang/activity-dashboard-go/internal/category"
	"github.com/jengzang/activity-dashboard-go/internal/config"
	"github.com/jengzang/activity-dashboard-go/internal/database"
	"github.com/jengzang/activity-dashboard-go/internal/logger"
	"github.com/jengzang/activity-dashboard-go/internal/repository"
	"github.com/jengzang/activity-dashboard-go/internal/service"
)

func main() {
	// 日志先于配置初始化，配置解析时的警告也使用同一 logger
	logger.Init(logger.FromEnv())
	// 加载配置
	cfg := config.Load()
	log := logger.Named("server")

	if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is not set; share links are signed with the default secret")
	}

	catalog := category.MustDefault()
	services := api.Services{
		Dashboard: service.NewDashboardService(repository.NewActivityRepository(database.GetDB()), catalog),
		Share:     service.NewShareService(cfg.JWTSecret, cfg.ShareTTL, catalog),
	}

	// 初始化路由
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动服务器
	go func() {
		log.Info().Str("addr", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
