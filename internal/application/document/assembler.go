// Package document 把学习文本组装为 HTML 并产出可下载文档
package document

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"study-assistant-api/internal/domain/entity"
	apperrors "study-assistant-api/pkg/errors"
)

const (
	DocumentTitle = "Study Material"
	ImageAltText  = "Study visual aid"
)

// 模板保持单行，输出中的换行只可能来自正文
const shellTemplate = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>{{.Title}}</title><style>body { font-family: Arial, sans-serif; padding: 20px; } h1 { color: #2c3e50; } p, li { line-height: 1.6; } img { max-width: 100%; height: auto; margin: 20px 0; }</style></head><body><h1>{{.Title}}</h1><div class="content">{{.Body}}</div>{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.ImageAlt}}">{{end}}</body></html>`

type shellData struct {
	Title    string
	ImageURL string
	ImageAlt string
	Body     template.HTML
}

// Assembler 把正文与可选图片组装为固定样式的 HTML 文档
type Assembler struct {
	shell    *template.Template
	markdown goldmark.Markdown
}

func NewAssembler() *Assembler {
	return &Assembler{
		shell:    template.Must(template.New("document").Parse(shellTemplate)),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithASTTransformers(
				util.Prioritized(imageStripper{}, 100),
			)),
		),
	}
}

// Assemble 组装 HTML；text 格式下每个换行对应一个 <br>
func (a *Assembler) Assemble(req *entity.DocumentRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Content) == "" {
		return "", apperrors.Validation("content is required")
	}

	imageURL, err := normalizeImageURL(req.ImageURL)
	if err != nil {
		return "", err
	}

	var body template.HTML
	switch req.Format {
	case "", entity.DocumentFormatText:
		body = textToHTML(req.Content)
	case entity.DocumentFormatMarkdown:
		body, err = a.markdownToHTML(req.Content)
		if err != nil {
			return "", apperrors.ErrRenderFailed.WithError(err).WithDetail("markdown conversion failed")
		}
	default:
		return "", apperrors.Validation("unsupported format %q", req.Format)
	}

	var buf bytes.Buffer
	data := shellData{
		Title:    DocumentTitle,
		ImageURL: imageURL,
		ImageAlt: ImageAltText,
		Body:     body,
	}
	if err := a.shell.Execute(&buf, data); err != nil {
		return "", apperrors.ErrRenderFailed.WithError(fmt.Errorf("execute document template: %w", err))
	}
	return buf.String(), nil
}

func textToHTML(content string) template.HTML {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	escaped := template.HTMLEscapeString(normalized)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// normalizeImageURL 图片地址只接受带主机的 http(s) 绝对地址
func normalizeImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.Validation("image_url must be an http(s) URL")
	}
	return raw, nil
}

// imageStripper 把正文中的 Markdown 图片替换为其替代文本，文档里的图片只来自 image_url
type imageStripper struct{}

func (imageStripper) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var images []*ast.Image
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if img, ok := n.(*ast.Image); ok && entering {
			images = append(images, img)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	for _, img := range images {
		parent := img.Parent()
		if parent == nil {
			continue
		}
		for child := img.FirstChild(); child != nil; {
			next := child.NextSibling()
			parent.InsertBefore(parent, img, child)
			child = next
		}
		parent.RemoveChild(parent, img)
	}
}

// markdownToHTML 原始 HTML 不透传（goldmark 默认省略）
func (a *Assembler) markdownToHTML(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := a.markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
