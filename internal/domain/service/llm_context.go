// Package service 定义跨层共享的调用上下文约定
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
)

// 已知的生成流程名，用于指标与日志标签
const (
	WorkflowExplainTopic = "explain_topic"
	WorkflowUnknown      = "unknown"
)

// WithWorkflow 在 context 上标记本次模型调用所属流程
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	if ctx == nil {
		return nil
	}
	w := strings.TrimSpace(workflow)
	if w == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyWorkflow, w)
}

// WorkflowFromContext 读取流程名，缺失时返回 unknown
func WorkflowFromContext(ctx context.Context) string {
	if ctx == nil {
		return WorkflowUnknown
	}
	s, ok := ctx.Value(llmCtxKeyWorkflow).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return WorkflowUnknown
	}
	return s
}
