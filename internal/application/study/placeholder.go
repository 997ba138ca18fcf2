package study

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/domain/entity"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
)

// PlaceholderGenerator 根据图片描述生成占位图地址，不合成真实图像
type PlaceholderGenerator struct {
	baseURL       string
	width         int
	height        int
	maxTextLength int
}

func NewPlaceholderGenerator(cfg config.PlaceholderConfig) *PlaceholderGenerator {
	g := &PlaceholderGenerator{
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		width:         cfg.Width,
		height:        cfg.Height,
		maxTextLength: cfg.MaxTextLength,
	}
	if g.baseURL == "" {
		g.baseURL = config.DefaultPlaceholderBaseURL
	}
	if g.width <= 0 {
		g.width = config.DefaultPlaceholderWidth
	}
	if g.height <= 0 {
		g.height = config.DefaultPlaceholderHeight
	}
	if g.maxTextLength <= 0 {
		g.maxTextLength = config.DefaultPlaceholderMaxText
	}
	return g
}

// Generate 空描述也会生成带空 text 参数的地址
func (g *PlaceholderGenerator) Generate(ctx context.Context, description string) *entity.ImagePlaceholder {
	snippet := truncateByRunes(description, g.maxTextLength)
	u := fmt.Sprintf("%s/%dx%d?text=%s", g.baseURL, g.width, g.height, url.QueryEscape(snippet))

	metrics.PlaceholderTotal.Inc()
	logger.Debug(ctx, "placeholder image issued", "snippet_length", len(snippet))

	return &entity.ImagePlaceholder{
		DescriptionSnippet: snippet,
		URL:                u,
	}
}
