// Package prompt 管理发送给文本生成模型的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"
	"unicode/utf8"

	apperrors "study-assistant-api/pkg/errors"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type PromptID string

const (
	PromptExplainTopicV1          PromptID = "explain_topic_v1"
	PromptExplainTopicWithImageV1 PromptID = "explain_topic_with_image_v1"
)

// ImageDirectivePrefix 模型输出中图片描述指令的固定前缀
const ImageDirectivePrefix = "[IMAGE:"

// MaxTopicRunes 主题最大长度（字符）
const MaxTopicRunes = 500

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]*template.Template
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]*template.Template),
	}
}

// Template 返回已解析的模板，首次访问时从内嵌文件加载
func (r *Registry) Template(id PromptID) (*template.Template, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	path, err := resolvePromptFile(id)
	if err != nil {
		return nil, err
	}
	text, err := readEmbeddedText(path)
	if err != nil {
		return nil, err
	}

	tpl, err := template.New(string(id)).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", id, err)
	}
	r.cache[id] = tpl
	return tpl, nil
}

// Build 根据主题与是否需要配图构造提示词
func (r *Registry) Build(topic string, needsImage bool) (string, error) {
	clean, err := SanitizeTopic(topic)
	if err != nil {
		return "", err
	}

	id := PromptExplainTopicV1
	if needsImage {
		id = PromptExplainTopicWithImageV1
	}

	tpl, err := r.Template(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, struct{ Topic string }{Topic: clean}); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", id, err)
	}
	return sb.String(), nil
}

// SanitizeTopic 规范化用户主题：去除控制字符、折叠空白，并把方括号替换为圆括号，
// 使主题本身无法伪造 [IMAGE: ...] 指令。
func SanitizeTopic(topic string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(topic))
	lastSpace := false
	for _, r := range topic {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
			}
			lastSpace = true
			continue
		case unicode.IsControl(r):
			continue
		case r == '[':
			r = '('
		case r == ']':
			r = ')'
		}
		sb.WriteRune(r)
		lastSpace = false
	}

	clean := strings.TrimSpace(sb.String())
	if clean == "" {
		return "", apperrors.Validation("topic is required")
	}
	if utf8.RuneCountInString(clean) > MaxTopicRunes {
		return "", apperrors.Validation("topic exceeds %d characters", MaxTopicRunes)
	}
	return clean, nil
}

func resolvePromptFile(id PromptID) (string, error) {
	switch id {
	case PromptExplainTopicV1:
		return "templates/explain_topic_v1.tmpl", nil
	case PromptExplainTopicWithImageV1:
		return "templates/explain_topic_with_image_v1.tmpl", nil
	default:
		return "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
