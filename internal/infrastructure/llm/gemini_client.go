// Package llm 封装外部文本生成模型客户端
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/domain/service"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
	"study-assistant-api/pkg/tracer"
)

const ProviderGemini = "gemini"

// contentGenerator *genai.GenerativeModel 的最小子集
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient 实现 port.TextGenerator；配置在构造时固定
type GeminiClient struct {
	client   *genai.Client
	model    contentGenerator
	name     string
	timeout  time.Duration
	retry    config.RetryConfig
	recorder service.LLMUsageRecorder
}

// NewGeminiClient 创建 Gemini 客户端，API Key 缺失时返回错误
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, recorder service.LLMUsageRecorder) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm.api_key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	model, err := newGenerativeModel(client, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return newGeminiClient(client, model, cfg, recorder), nil
}

func newGeminiClient(client *genai.Client, model contentGenerator, cfg config.LLMConfig, recorder service.LLMUsageRecorder) *GeminiClient {
	name := strings.TrimSpace(cfg.Model)
	if name == "" {
		name = config.DefaultLLMModel
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &GeminiClient{
		client:   client,
		model:    model,
		name:     name,
		timeout:  cfg.Timeout,
		retry:    retry,
		recorder: recorder,
	}
}

func newGenerativeModel(client *genai.Client, cfg config.LLMConfig) (*genai.GenerativeModel, error) {
	name := strings.TrimSpace(cfg.Model)
	if name == "" {
		name = config.DefaultLLMModel
	}
	settings, err := SafetySettings(cfg.Safety.Threshold)
	if err != nil {
		return nil, err
	}

	m := client.GenerativeModel(name)
	m.SetTemperature(float32(cfg.Temperature))
	m.SetTopP(float32(cfg.TopP))
	m.SetTopK(int32(cfg.TopK))
	m.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	m.SafetySettings = settings
	return m, nil
}

// SafetySettings 为四类有害内容设置同一拦截阈值
func SafetySettings(threshold string) ([]*genai.SafetySetting, error) {
	var t genai.HarmBlockThreshold
	switch strings.ToLower(strings.TrimSpace(threshold)) {
	case "", config.DefaultSafetyThreshold:
		t = genai.HarmBlockMediumAndAbove
	case "low_and_above":
		t = genai.HarmBlockLowAndAbove
	case "only_high":
		t = genai.HarmBlockOnlyHigh
	case "none":
		t = genai.HarmBlockNone
	default:
		return nil, fmt.Errorf("unknown safety threshold: %s", threshold)
	}

	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{Category: c, Threshold: t})
	}
	return settings, nil
}

// Model 当前使用的模型名
func (c *GeminiClient) Model() string { return c.name }

// Generate 发送单轮提示词并返回文本；失败统一为 *errors.AppError
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	workflow := service.WorkflowFromContext(ctx)

	ctx, span := tracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", ProviderGemini),
		attribute.String("llm.model", c.name),
		attribute.String("llm.workflow", workflow),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	attempts := 0
	resp, err := backoff.Retry(ctx, func() (*genai.GenerateContentResponse, error) {
		attempts++
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			classified := ClassifyError(err)
			if !IsRetryable(classified) {
				return nil, backoff.Permanent(classified)
			}
			logger.Warn(ctx, "llm call failed, retrying", "attempt", attempts, "error", err.Error())
			return nil, classified
		}
		return resp, nil
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(uint(c.retry.MaxAttempts)))

	duration := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(ProviderGemini, c.name, workflow).Observe(duration.Seconds())
	span.SetAttributes(attribute.Int("llm.attempts", attempts))

	if err == nil {
		var text string
		text, err = responseText(resp)
		if err == nil {
			metrics.LLMCallTotal.WithLabelValues(ProviderGemini, c.name, workflow, "success").Inc()
			c.recordUsage(ctx, workflow, resp, duration)
			return text, nil
		}
	}

	appErr := ClassifyError(err)
	metrics.LLMCallTotal.WithLabelValues(ProviderGemini, c.name, workflow, "error").Inc()
	tracer.RecordError(span, appErr)
	logger.Error(ctx, "llm call failed", appErr,
		"provider", ProviderGemini,
		"model", c.name,
		"workflow", workflow,
		"attempts", attempts,
		"duration_ms", duration.Milliseconds(),
	)
	return "", appErr
}

// Close 释放底层连接
func (c *GeminiClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *GeminiClient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.retry.Backoff.Initial > 0 {
		b.InitialInterval = c.retry.Backoff.Initial
	}
	if c.retry.Backoff.Max > 0 {
		b.MaxInterval = c.retry.Backoff.Max
	}
	if c.retry.Backoff.Multiplier > 1 {
		b.Multiplier = c.retry.Backoff.Multiplier
	}
	return b
}

func (c *GeminiClient) recordUsage(ctx context.Context, workflow string, resp *genai.GenerateContentResponse, d time.Duration) {
	if c.recorder == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	c.recorder.Record(ctx, service.LLMUsageInput{
		Workflow:         workflow,
		Provider:         ProviderGemini,
		Model:            c.name,
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		DurationMs:       int(d.Milliseconds()),
	})
}

// responseText 拼接首个候选的全部文本片段
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", apperrors.ErrUpstreamGeneration.WithDetail("prompt blocked by safety policy")
		}
		return "", apperrors.ErrUpstreamGeneration.WithDetail("model returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", apperrors.ErrUpstreamGeneration.WithDetail("response blocked by safety policy")
	}
	if cand.Content == nil {
		return "", apperrors.ErrUpstreamGeneration.WithDetail("model returned empty content")
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", apperrors.ErrUpstreamGeneration.WithDetail("model returned empty text")
	}
	return sb.String(), nil
}
