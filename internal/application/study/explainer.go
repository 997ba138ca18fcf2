// Package study 实现主题讲解与占位图生成用例
package study

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"study-assistant-api/internal/domain/entity"
	"study-assistant-api/internal/domain/service"
	"study-assistant-api/internal/workflow/port"
	workflowprompt "study-assistant-api/internal/workflow/prompt"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
	"study-assistant-api/pkg/tracer"
)

// Explainer 构造提示词并调用文本生成模型
type Explainer struct {
	prompts   *workflowprompt.Registry
	generator port.TextGenerator
}

func NewExplainer(prompts *workflowprompt.Registry, generator port.TextGenerator) *Explainer {
	return &Explainer{prompts: prompts, generator: generator}
}

// Explain 生成主题讲解文本；NeedsImage 时附带解析出的图片描述
func (e *Explainer) Explain(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationResult, error) {
	if e == nil || e.generator == nil || e.prompts == nil {
		return nil, apperrors.ErrInternalError.WithDetail("explainer not configured")
	}
	if req == nil {
		return nil, apperrors.Validation("topic is required")
	}

	ctx, span := tracer.Start(ctx, "study.Explain")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("study.needs_image", req.NeedsImage),
		attribute.Int("study.topic_length", len(req.Topic)),
	)

	status := "success"
	defer func() {
		metrics.ExplainTotal.WithLabelValues(strconv.FormatBool(req.NeedsImage), status).Inc()
	}()

	prompt, err := e.prompts.Build(req.Topic, req.NeedsImage)
	if err != nil {
		status = "invalid"
		tracer.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	text, err := e.generator.Generate(service.WithWorkflow(ctx, service.WorkflowExplainTopic), prompt)
	if err != nil {
		status = "error"
		tracer.RecordError(span, err)
		logger.Error(ctx, "explain topic failed", err,
			"needs_image", req.NeedsImage,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		status = "error"
		err := apperrors.ErrUpstreamGeneration.WithDetail("model returned empty text")
		tracer.RecordError(span, err)
		return nil, err
	}

	result := &entity.GenerationResult{
		Text:       text,
		NeedsImage: req.NeedsImage,
	}
	if req.NeedsImage {
		result.ImageDescription = ExtractImageDescription(text)
	}

	logger.Info(ctx, "topic explained",
		"needs_image", req.NeedsImage,
		"response_length", len(text),
		"has_image_directive", result.ImageDescription != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
