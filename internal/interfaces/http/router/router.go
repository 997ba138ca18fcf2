// Package router 提供 HTTP 路由配置
package router

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/interfaces/http/dto"
	"study-assistant-api/internal/interfaces/http/handler"
	"study-assistant-api/internal/interfaces/http/middleware"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config

	study  *handler.StudyHandler
	health *handler.HealthHandler
}

// New 创建新的路由器
func New(cfg *config.Config, study *handler.StudyHandler, health *handler.HealthHandler) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		study:  study,
		health: health,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	skip := append([]string{}, middleware.DefaultAuditSkipPaths...)
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		skip = append(skip, p)
	}

	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, skip...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(skip...))
	}

	r.engine.Use(middleware.Audit(middleware.AuditConfig{
		SkipPaths:    skip,
		SkipPrefixes: []string{"/static/"},
	}))
}

func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.health.Health)
	r.engine.GET("/ready", r.health.Ready)
	r.engine.GET("/live", r.health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	api.Use(middleware.BodyLimit(r.cfg.Server.HTTP.MaxBodyBytes))
	{
		api.POST("/chat", r.study.Chat)
		api.POST("/generate-image", r.study.GenerateImage)
		api.POST("/generate-pdf", r.study.GeneratePDF)
	}

	r.setupStatic()

	r.engine.NoRoute(func(c *gin.Context) {
		dto.Fail(c, apperrors.ErrNotFound)
	})
}

// setupStatic 挂载可选的前端静态资源
func (r *Router) setupStatic() {
	dir := strings.TrimSpace(r.cfg.Server.HTTP.StaticDir)
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Default().Warn("static dir not available, frontend disabled", "dir", dir)
		return
	}

	r.engine.Static("/static", dir)
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err == nil {
		r.engine.StaticFile("/", index)
	}
}
