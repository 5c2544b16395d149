package router

import (
	"context"
	"net/http"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/cache"
	"github.com/cwmbran-celtic/clubsocial/internal/config"
	adminhandlers "github.com/cwmbran-celtic/clubsocial/internal/http/handlers/admin"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/metrics"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	generateRule, publishRule := socialRateLimitRules(cfg.Security.RateLimit, cfg.Redis.Prefix)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(metrics.Middleware())
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 后台社媒帖子接口（调用方视为可信）
		posts := apiV1.Group("/admin/social-posts")
		{
			posts.GET("", adminHandler.GetAdminSocialPosts)
			posts.GET("/stats", adminHandler.GetAdminSocialPostStats)
			posts.POST("", adminHandler.CreateSocialPost)
			posts.POST("/generate", RateLimitMiddleware(redisClient, generateRule, KeyByIPAndJSONField("type")), adminHandler.GenerateSocialPosts)
			posts.GET("/:id", adminHandler.GetAdminSocialPost)
			posts.PUT("/:id", adminHandler.UpdateSocialPost)
			posts.PUT("/:id/status", adminHandler.UpdateSocialPostStatus)
			posts.DELETE("/:id", adminHandler.DeleteSocialPost)
			posts.POST("/:id/publish", RateLimitMiddleware(redisClient, publishRule, KeyByIPAndParam("id")), adminHandler.PublishSocialPost)
		}
	}

	r.GET("/metrics", metrics.Handler())
	r.GET("/health", healthHandler(c))

	return r
}

func healthHandler(c *provider.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := "ok"
		checks := gin.H{}
		if c != nil && c.DB != nil {
			checks["database"] = "ok"
			sqlDB, err := c.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(checkCtx)
			}
			if err != nil {
				status = "degraded"
				checks["database"] = err.Error()
			}
		}
		if cache.Enabled() {
			checks["redis"] = "ok"
			if err := cache.Ping(checkCtx); err != nil {
				status = "degraded"
				checks["redis"] = err.Error()
			}
		}

		body := gin.H{"status": status, "checks": checks}
		if c != nil {
			if c.Platforms != nil {
				body["platforms"] = c.Platforms.Modes()
			}
			body["queue_enabled"] = c.QueueClient.Enabled()
		}
		ctx.JSON(http.StatusOK, body)
	}
}
