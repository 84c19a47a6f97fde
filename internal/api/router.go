package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/config"
	"github.com/jengzang/activity-dashboard-go/internal/handler"
	"github.com/jengzang/activity-dashboard-go/internal/middleware"
	"github.com/jengzang/activity-dashboard-go/internal/service"
)

// Services are the dependencies the routes are served from
type Services struct {
	Dashboard *service.DashboardService
	Share     *service.ShareService
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		n, err := svc.Dashboard.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "database is not reachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"message":    "Activity Dashboard API is running",
			"activities": n,
		})
	})

	activities := handler.NewActivityHandler(svc.Dashboard, maxImport(cfg))
	filters := handler.NewFilterHandler(svc.Dashboard)
	stats := handler.NewStatsHandler(svc.Dashboard)
	categories := handler.NewCategoryHandler(svc.Dashboard)
	share := handler.NewShareHandler(svc.Share)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))
	{
		api.GET("/categories", categories.GetCategories)

		// 活动列表与导入
		api.GET("/activities", activities.ListActivities)
		api.GET("/activities/:id", activities.GetActivity)
		api.POST("/activities/import", activities.ImportActivities)

		// 过滤器
		f := api.Group("/filter")
		{
			f.POST("/evaluate", filters.Evaluate)
			f.POST("/expression", filters.Expression)
		}

		// 统计图表
		s := api.Group("/stats")
		{
			s.GET("/timeline", stats.GetTimeline)
			s.GET("/progress", stats.GetProgress)
			s.GET("/calendar", stats.GetCalendar)
		}

		// 分享链接
		api.POST("/share", share.CreateShare)
		api.GET("/share/:token", share.ResolveShare)
	}

	return r
}

func maxImport(cfg *config.Config) int64 {
	if cfg.MaxImport > 0 {
		return cfg.MaxImport
	}
	return config.DefaultMaxImport
}
