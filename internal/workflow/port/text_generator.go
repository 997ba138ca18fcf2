package port

import "context"

// TextGenerator 定义业务层对文本生成模型的最小依赖（port）。
// 实现需把传输、配额、内容安全拦截等失败转换为可区分的 *errors.AppError。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
