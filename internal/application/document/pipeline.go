package document

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"study-assistant-api/internal/domain/entity"
	"study-assistant-api/internal/workflow/port"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
	"study-assistant-api/pkg/tracer"
)

const contentTypePDF = "application/pdf"

// Pipeline Assemble -> Render -> Spool
type Pipeline struct {
	assembler *Assembler
	renderer  port.DocumentRenderer
	spool     *Spool
}

func NewPipeline(assembler *Assembler, renderer port.DocumentRenderer, spool *Spool) *Pipeline {
	return &Pipeline{
		assembler: assembler,
		renderer:  renderer,
		spool:     spool,
	}
}

// Produce 返回的 TempFile 由调用方在响应结束后 Release
func (p *Pipeline) Produce(ctx context.Context, req *entity.DocumentRequest) (*TempFile, error) {
	if p == nil || p.assembler == nil || p.renderer == nil || p.spool == nil {
		return nil, apperrors.ErrInternalError.WithDetail("document pipeline not configured")
	}

	ctx, span := tracer.Start(ctx, "document.Produce")
	defer span.End()

	format := entity.DocumentFormatText
	if req != nil && req.Format != "" {
		format = req.Format
	}
	span.SetAttributes(
		attribute.String("document.format", string(format)),
		attribute.Bool("document.has_image", req.HasImage()),
	)

	start := time.Now()
	html, err := p.assemble(ctx, req)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	assembled := time.Now()

	content, err := p.render(ctx, html)
	if err != nil {
		tracer.RecordError(span, err)
		logger.Error(ctx, "document render failed", err, "engine", p.renderer.Engine())
		return nil, err
	}
	rendered := time.Now()
	metrics.DocumentSize.WithLabelValues(string(format)).Observe(float64(len(content)))

	file, err := p.spool.Write(ctx, &entity.RenderedDocument{
		Content:     content,
		FileName:    p.spool.downloadName,
		ContentType: contentTypePDF,
	})
	if err != nil {
		tracer.RecordError(span, err)
		logger.Error(ctx, "document spool failed", err)
		return nil, err
	}

	logger.Info(ctx, "document produced",
		"format", format,
		"has_image", req.HasImage(),
		"size", file.Size(),
		"assemble_ms", assembled.Sub(start).Milliseconds(),
		"render_ms", rendered.Sub(assembled).Milliseconds(),
		"spool_ms", time.Since(rendered).Milliseconds(),
	)
	return file, nil
}

func (p *Pipeline) assemble(ctx context.Context, req *entity.DocumentRequest) (string, error) {
	_, span := tracer.Start(ctx, "document.Assemble")
	defer span.End()

	html, err := p.assembler.Assemble(req)
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}
	span.SetAttributes(attribute.Int("document.html_length", len(html)))
	return html, nil
}

func (p *Pipeline) render(ctx context.Context, html string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "document.Render")
	defer span.End()
	span.SetAttributes(attribute.String("document.engine", p.renderer.Engine()))

	content, err := p.renderer.Render(ctx, html)
	if err != nil {
		tracer.RecordError(span, err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.ErrRenderFailed.WithError(err)
	}
	if len(content) == 0 {
		err := apperrors.ErrRenderFailed.WithDetail("renderer produced empty output")
		tracer.RecordError(span, err)
		return nil, err
	}
	return content, nil
}
