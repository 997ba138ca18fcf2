// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"os"

	"github.com/google/wire"

	"study-assistant-api/internal/application/document"
	"study-assistant-api/internal/application/study"
	"study-assistant-api/internal/application/usage"
	"study-assistant-api/internal/config"
	"study-assistant-api/internal/domain/service"
	"study-assistant-api/internal/infrastructure/llm"
	"study-assistant-api/internal/infrastructure/render"
	"study-assistant-api/internal/interfaces/http/handler"
	"study-assistant-api/internal/interfaces/http/router"
	"study-assistant-api/internal/workflow/port"
	workflowprompt "study-assistant-api/internal/workflow/prompt"
	"study-assistant-api/pkg/logger"
)

// LLMSet 模型客户端提供者集合
var LLMSet = wire.NewSet(
	usage.NewLLMUsageRecorder,
	wire.Bind(new(service.LLMUsageRecorder), new(*usage.LLMUsageRecorder)),
	ProvideGeminiClient,
	wire.Bind(new(port.TextGenerator), new(*llm.GeminiClient)),
)

// StudySet 讲解与占位图提供者集合
var StudySet = wire.NewSet(
	workflowprompt.NewRegistry,
	study.NewExplainer,
	ProvidePlaceholderGenerator,
)

// DocumentSet 文档流水线提供者集合
var DocumentSet = wire.NewSet(
	document.NewAssembler,
	ProvideRenderer,
	wire.Bind(new(port.DocumentRenderer), new(*render.WkhtmltopdfRenderer)),
	wire.Bind(new(port.EngineChecker), new(*render.WkhtmltopdfRenderer)),
	ProvideSpool,
	document.NewPipeline,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewStudyHandler,
	handler.NewHealthHandler,
	router.New,
)

// ProvideGeminiClient 创建 Gemini 客户端，cleanup 时关闭连接
func ProvideGeminiClient(ctx context.Context, cfg *config.Config, recorder service.LLMUsageRecorder) (*llm.GeminiClient, func(), error) {
	client, err := llm.NewGeminiClient(ctx, cfg.LLM, recorder)
	if err != nil {
		return nil, nil, err
	}
	logger.Info(ctx, "gemini client ready", "model", client.Model())
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error(ctx, "failed to close gemini client", err)
		}
	}
	return client, cleanup, nil
}

// ProvidePlaceholderGenerator 创建占位图生成器
func ProvidePlaceholderGenerator(cfg *config.Config) *study.PlaceholderGenerator {
	return study.NewPlaceholderGenerator(cfg.Placeholder)
}

// ProvideRenderer 创建 PDF 渲染器；引擎不可用时仅告警，由 /ready 暴露
func ProvideRenderer(ctx context.Context, cfg *config.Config) *render.WkhtmltopdfRenderer {
	r := render.NewWkhtmltopdfRenderer(cfg.Renderer)
	if err := r.CheckEngine(ctx); err != nil {
		logger.Warn(ctx, "pdf engine unavailable, /api/generate-pdf will fail", "engine", r.Engine(), "error", err.Error())
	}
	return r
}

// ProvideSpool 创建临时文件目录管理；目录不可用时仅告警
func ProvideSpool(ctx context.Context, cfg *config.Config) *document.Spool {
	s := document.NewSpool(cfg.Delivery)
	if info, err := os.Stat(s.Dir()); err != nil || !info.IsDir() {
		logger.Warn(ctx, "spool directory unavailable, /api/generate-pdf will fail", "dir", s.Dir())
	}
	return s
}
