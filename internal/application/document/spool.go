package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/domain/entity"
	apperrors "study-assistant-api/pkg/errors"
	"study-assistant-api/pkg/logger"
	"study-assistant-api/pkg/metrics"
)

const spoolFilePrefix = "study_material-"

// Spool 把渲染结果落到请求独占的临时文件
type Spool struct {
	dir          string
	downloadName string
}

func NewSpool(cfg config.DeliveryConfig) *Spool {
	dir := strings.TrimSpace(cfg.TempDir)
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.TrimSpace(cfg.DownloadName)
	if name == "" {
		name = config.DefaultDownloadName
	}
	return &Spool{dir: dir, downloadName: name}
}

// Dir 临时文件目录
func (s *Spool) Dir() string { return s.dir }

// Write 以 O_EXCL 创建唯一文件并写入内容；失败时不留下残余文件
func (s *Spool) Write(ctx context.Context, doc *entity.RenderedDocument) (*TempFile, error) {
	if doc == nil || doc.Size() == 0 {
		return nil, apperrors.ErrStorage.WithDetail("empty document")
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}

	ext := filepath.Ext(s.downloadName)
	if ext == "" {
		ext = ".pdf"
	}
	path := filepath.Join(s.dir, spoolFilePrefix+uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		return nil, apperrors.ErrStorage.WithError(fmt.Errorf("create temp file: %w", err))
	}

	if _, err := f.Write(doc.Content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		return nil, apperrors.ErrStorage.WithError(fmt.Errorf("write temp file: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		metrics.DeliveryTotal.WithLabelValues("error").Inc()
		return nil, apperrors.ErrStorage.WithError(fmt.Errorf("close temp file: %w", err))
	}

	metrics.SpoolFilesActive.Inc()
	logger.Debug(ctx, "document spooled", "path", path, "size", doc.Size())

	name := doc.FileName
	if name == "" {
		name = s.downloadName
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &TempFile{
		path:        path,
		name:        name,
		contentType: contentType,
		size:        int64(doc.Size()),
	}, nil
}

// TempFile 单次请求持有的临时文件，响应发送后必须 Release
type TempFile struct {
	path        string
	name        string
	contentType string
	size        int64

	once sync.Once
	err  error
}

func (t *TempFile) Path() string        { return t.path }
func (t *TempFile) Name() string        { return t.name }
func (t *TempFile) ContentType() string { return t.contentType }
func (t *TempFile) Size() int64         { return t.size }

// Release 删除临时文件，可重复调用
func (t *TempFile) Release() error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		err := os.Remove(t.path)
		if err != nil && !os.IsNotExist(err) {
			t.err = apperrors.ErrStorage.WithError(fmt.Errorf("remove temp file: %w", err))
			return
		}
		metrics.SpoolFilesActive.Dec()
	})
	return t.err
}
