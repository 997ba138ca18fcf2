// Package entity 定义领域实体
package entity

// GenerationRequest 主题讲解请求，单次请求内有效
type GenerationRequest struct {
	Topic      string `json:"topic"`
	NeedsImage bool   `json:"needs_image"`
}

// GenerationResult 模型生成结果
type GenerationResult struct {
	Text       string `json:"text"`
	NeedsImage bool   `json:"needs_image"`
	// ImageDescription 从文本中解析出的首个 [IMAGE: ...] 描述
	ImageDescription string `json:"image_description,omitempty"`
}

// ImagePlaceholder 占位图引用，不包含真实图像
type ImagePlaceholder struct {
	DescriptionSnippet string `json:"description_snippet"`
	URL                string `json:"url"`
}

// DocumentFormat 文档内容格式
type DocumentFormat string

const (
	// DocumentFormatText 纯文本，换行转为 <br>
	DocumentFormatText DocumentFormat = "text"
	// DocumentFormatMarkdown Markdown 渲染为 HTML
	DocumentFormatMarkdown DocumentFormat = "markdown"
)

// DocumentRequest 文档渲染请求
type DocumentRequest struct {
	Content string `json:"content"`
	// ImageURL 为空表示不嵌入图片
	ImageURL string         `json:"image_url,omitempty"`
	Format   DocumentFormat `json:"format,omitempty"`
}

// HasImage 是否需要嵌入图片
func (r *DocumentRequest) HasImage() bool {
	return r != nil && r.ImageURL != ""
}

// RenderedDocument 渲染后的二进制文档
type RenderedDocument struct {
	Content     []byte
	FileName    string
	ContentType string
}

// Size 文档字节数
func (d *RenderedDocument) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Content)
}
