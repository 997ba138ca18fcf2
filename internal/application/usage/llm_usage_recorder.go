// Package usage 记录模型调用用量
package usage

import (
	"context"
	"strings"

	"study-assistant-api/internal/domain/service"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
)

// LLMUsageRecorder 将 token 用量写入指标与日志（无持久化）
type LLMUsageRecorder struct{}

// NewLLMUsageRecorder 创建用量记录器
func NewLLMUsageRecorder() *LLMUsageRecorder {
	return &LLMUsageRecorder{}
}

// Record 记录一次调用的 token 用量，负数视为无效直接丢弃
func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) {
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		logger.Warn(ctx, "invalid llm token usage dropped",
			"prompt_tokens", in.PromptTokens,
			"completion_tokens", in.CompletionTokens,
		)
		return
	}

	provider := strings.TrimSpace(in.Provider)
	model := strings.TrimSpace(in.Model)

	if in.PromptTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(in.PromptTokens))
	}
	if in.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(in.CompletionTokens))
	}

	logger.Debug(ctx, "llm usage",
		"workflow", in.Workflow,
		"provider", provider,
		"model", model,
		"prompt_tokens", in.PromptTokens,
		"completion_tokens", in.CompletionTokens,
		"duration_ms", in.DurationMs,
	)
}
