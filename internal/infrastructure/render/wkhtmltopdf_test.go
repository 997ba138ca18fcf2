package render

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-api/internal/config"
	apperrors "study-assistant-api/pkg/errors"
)

func TestNewRendererDefaults(t *testing.T) {
	r := NewWkhtmltopdfRenderer(config.RendererConfig{})
	assert.Equal(t, DefaultPageSize, r.pageSize)
	assert.EqualValues(t, DefaultDPI, r.dpi)
	assert.Equal(t, DefaultTimeout, r.timeout)
	assert.Equal(t, EngineWkhtmltopdf, r.Engine())
}

func TestRenderRespectsConcurrencyBound(t *testing.T) {
	r := NewWkhtmltopdfRenderer(config.RendererConfig{MaxConcurrent: 1, Timeout: 50 * time.Millisecond})
	require.True(t, r.sem.TryAcquire(1))
	defer r.sem.Release(1)

	_, err := r.Render(context.Background(), "<html></html>")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrServiceUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.AsAppError(err).HTTPStatus)
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewWkhtmltopdfRenderer(config.RendererConfig{Timeout: 30 * time.Second})
	if err := r.CheckEngine(context.Background()); err != nil {
		t.Skip("wkhtmltopdf not installed")
	}

	out, err := r.Render(context.Background(), "<html><body><h1>Study Material</h1>Line1<br>Line2</body></html>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
