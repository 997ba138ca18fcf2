// Package render 提供 HTML 到 PDF 的渲染实现
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"golang.org/x/sync/semaphore"

	"study-assistant-api/internal/config"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
)

const (
	EngineWkhtmltopdf = "wkhtmltopdf"

	DefaultTimeout       = 60 * time.Second
	DefaultMaxConcurrent = 4
	DefaultPageSize      = wkhtmltopdf.PageSizeA4
	DefaultDPI           = 96
)

// WkhtmltopdfRenderer 调用 wkhtmltopdf 子进程渲染 PDF，并发数受信号量限制
type WkhtmltopdfRenderer struct {
	pageSize string
	dpi      uint
	timeout  time.Duration
	sem      *semaphore.Weighted
}

func NewWkhtmltopdfRenderer(cfg config.RendererConfig) *WkhtmltopdfRenderer {
	if p := strings.TrimSpace(cfg.BinaryPath); p != "" {
		wkhtmltopdf.SetPath(p)
	}

	r := &WkhtmltopdfRenderer{
		pageSize: strings.TrimSpace(cfg.PageSize),
		dpi:      cfg.DPI,
		timeout:  cfg.Timeout,
	}
	if r.pageSize == "" {
		r.pageSize = DefaultPageSize
	}
	if r.dpi == 0 {
		r.dpi = DefaultDPI
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	r.sem = semaphore.NewWeighted(maxConcurrent)
	return r
}

func (r *WkhtmltopdfRenderer) Engine() string { return EngineWkhtmltopdf }

// CheckEngine 检查 wkhtmltopdf 可执行文件是否可用
func (r *WkhtmltopdfRenderer) CheckEngine(_ context.Context) error {
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return apperrors.ErrRenderFailed.WithError(err).WithDetail("wkhtmltopdf not available")
	}
	return nil
}

func (r *WkhtmltopdfRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		metrics.RenderTotal.WithLabelValues(EngineWkhtmltopdf, "timeout").Inc()
		return nil, apperrors.ErrServiceUnavailable.WithError(err).WithDetail("renderer busy")
	}
	defer r.sem.Release(1)

	metrics.RenderInFlight.Inc()
	defer metrics.RenderInFlight.Dec()

	start := time.Now()
	out, err := r.render(ctx, html)
	metrics.RenderDuration.WithLabelValues(EngineWkhtmltopdf).Observe(time.Since(start).Seconds())
	if err != nil {
		status := "error"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = "timeout"
			err = apperrors.ErrRenderFailed.WithError(err).WithDetail("render timed out")
		}
		metrics.RenderTotal.WithLabelValues(EngineWkhtmltopdf, status).Inc()
		logger.Warn(ctx, "pdf render failed", "error", err.Error(), "status", status)
		return nil, err
	}

	metrics.RenderTotal.WithLabelValues(EngineWkhtmltopdf, "success").Inc()
	return out, nil
}

func (r *WkhtmltopdfRenderer) render(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, apperrors.ErrRenderFailed.WithError(err).WithDetail("wkhtmltopdf not available")
	}
	pdfg.PageSize.Set(r.pageSize)
	pdfg.Dpi.Set(r.dpi)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, apperrors.ErrRenderFailed.WithError(fmt.Errorf("wkhtmltopdf: %w", err))
	}

	out := pdfg.Bytes()
	if len(out) == 0 {
		return nil, apperrors.ErrRenderFailed.WithDetail("wkhtmltopdf produced empty output")
	}
	return out, nil
}
