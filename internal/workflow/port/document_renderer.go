package port

import "context"

// DocumentRenderer 将 HTML 文档转换为分页二进制文档（PDF）。
type DocumentRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	// Engine 渲染引擎名，用于指标标签
	Engine() string
}

// EngineChecker 可选能力：检查渲染引擎是否可用（就绪探针使用）
type EngineChecker interface {
	CheckEngine(ctx context.Context) error
}
