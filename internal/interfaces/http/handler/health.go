package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/workflow/port"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg      *config.Config
	renderer port.EngineChecker
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.Config, renderer port.EngineChecker) *HealthHandler {
	return &HealthHandler{
		cfg:      cfg,
		renderer: renderer,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if h != nil && h.cfg != nil {
		resp.Version = h.cfg.App.Version
	}
	c.JSON(http.StatusOK, resp)
}

// Ready 就绪检查：模型凭据已配置且渲染引擎可用
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"llm":      {Status: "unknown"},
		"renderer": {Status: "unknown"},
	}
	ready := true

	if h == nil || h.cfg == nil || strings.TrimSpace(h.cfg.LLM.APIKey) == "" {
		checks["llm"].Status = "missing"
		checks["llm"].Error = "llm api key not configured"
		ready = false
	} else {
		checks["llm"].Status = "ok"
	}

	if h == nil || h.renderer == nil {
		checks["renderer"].Status = "missing"
		checks["renderer"].Error = "renderer not configured"
		ready = false
	} else {
		start := time.Now()
		err := h.renderer.CheckEngine(ctx)
		checks["renderer"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["renderer"].Status = "error"
			checks["renderer"].Error = err.Error()
			ready = false
		} else {
			checks["renderer"].Status = "ok"
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
