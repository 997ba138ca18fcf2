package document

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-assistant-api/internal/config"
	"study-assistant-api/internal/domain/entity"
	apperrors "study-assistant-api/pkg/errors"
)

type fakeRenderer struct {
	out   []byte
	err   error
	calls int
	html  string
}

func (f *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	f.calls++
	f.html = html
	return f.out, f.err
}

func (f *fakeRenderer) Engine() string { return "fake" }

func TestAssembleTextReplacesEveryLineBreak(t *testing.T) {
	a := NewAssembler()
	contents := []string{
		"Line1\nLine2",
		"single line",
		"a\n\n\nb\n",
		"windows\r\nline\r\nendings",
		"old mac\rstyle",
		"\nleading and trailing\n",
	}
	for _, c := range contents {
		html, err := a.Assemble(&entity.DocumentRequest{Content: c})
		require.NoError(t, err)

		normalized := strings.ReplaceAll(c, "\r\n", "\n")
		normalized = strings.ReplaceAll(normalized, "\r", "\n")

		assert.NotContains(t, html, "\n", c)
		assert.NotContains(t, html, "\r", c)
		assert.Equal(t, strings.Count(normalized, "\n"), strings.Count(html, "<br>"), c)
	}
}

func TestAssembleFixedStyleAndTitle(t *testing.T) {
	html, err := NewAssembler().Assemble(&entity.DocumentRequest{Content: "x"})
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Study Material</title>")
	assert.Contains(t, html, "<h1>Study Material</h1>")
	assert.Contains(t, html, "font-family: Arial")
	assert.Contains(t, html, "padding: 20px")
	assert.Contains(t, html, "color: #2c3e50")
	assert.Contains(t, html, "line-height: 1.6")
	assert.Contains(t, html, "max-width: 100%")
}

func TestAssembleImageTag(t *testing.T) {
	a := NewAssembler()

	html, err := a.Assemble(&entity.DocumentRequest{Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(html, "<img"))

	imageURL := "https://placehold.co/600x400?text=water%20cycle"
	html, err = a.Assemble(&entity.DocumentRequest{Content: "x\ny", ImageURL: imageURL})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<img"))
	assert.Contains(t, html, `src="`+imageURL+`"`)
	assert.Contains(t, html, `alt="Study visual aid"`)
}

func TestAssembleEscapesContent(t *testing.T) {
	html, err := NewAssembler().Assemble(&entity.DocumentRequest{Content: "<img src=x>\n<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(html, "<img"))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestAssembleMarkdown(t *testing.T) {
	html, err := NewAssembler().Assemble(&entity.DocumentRequest{
		Content: "## Gravity\n\n- mass\n- distance\n\n<b>raw</b>",
		Format:  entity.DocumentFormatMarkdown,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Gravity</h2>")
	assert.Contains(t, html, "<li>mass</li>")
	assert.NotContains(t, html, "<b>raw</b>")
}

func TestAssembleMarkdownImagesAreNotEmbedded(t *testing.T) {
	a := NewAssembler()

	html, err := a.Assemble(&entity.DocumentRequest{
		Content: "Before ![a diagram](https://example.com/a.png) after\n\n[![badge](https://example.com/b.png)](https://example.com)",
		Format:  entity.DocumentFormatMarkdown,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(html, "<img"))
	assert.Contains(t, html, "Before a diagram after")
	assert.Contains(t, html, `<a href="https://example.com">badge</a>`)

	html, err = a.Assemble(&entity.DocumentRequest{
		Content:  "![inline](https://example.com/a.png)",
		Format:   entity.DocumentFormatMarkdown,
		ImageURL: "https://example.com/visual.png",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<img"))
	assert.Contains(t, html, `src="https://example.com/visual.png"`)
}

func TestAssembleRejectsNonHTTPImageURL(t *testing.T) {
	a := NewAssembler()
	for _, imageURL := range []string{
		"data:image/png;base64,AAAA",
		"javascript:alert(1)",
		"ftp://example.com/a.png",
		"/relative/a.png",
		"https://",
		"http://exa mple.com/%zz",
	} {
		_, err := a.Assemble(&entity.DocumentRequest{Content: "x", ImageURL: imageURL})
		require.Error(t, err, imageURL)
		assert.True(t, stderrors.Is(err, apperrors.ErrInvalidParam), imageURL)
	}

	html, err := a.Assemble(&entity.DocumentRequest{Content: "x", ImageURL: "  "})
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(html, "<img"))
	assert.NotContains(t, html, "ZgotmplZ")
}

func TestAssembleValidation(t *testing.T) {
	a := NewAssembler()
	for _, req := range []*entity.DocumentRequest{
		nil,
		{Content: ""},
		{Content: "  \n "},
		{Content: "x", Format: "docx"},
	} {
		_, err := a.Assemble(req)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, apperrors.ErrInvalidParam))
	}
}

func TestSpoolWriteAndRelease(t *testing.T) {
	dir := t.TempDir()
	s := NewSpool(config.DeliveryConfig{TempDir: dir})

	f, err := s.Write(context.Background(), &entity.RenderedDocument{Content: []byte("%PDF-1.4")})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(f.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(f.Path()), "study_material-"))
	assert.Equal(t, ".pdf", filepath.Ext(f.Path()))
	assert.Equal(t, "study_material.pdf", f.Name())
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.EqualValues(t, 8, f.Size())

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, f.Release())
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, f.Release())
}

func TestSpoolNamesAreUnique(t *testing.T) {
	s := NewSpool(config.DeliveryConfig{TempDir: t.TempDir()})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		f, err := s.Write(context.Background(), &entity.RenderedDocument{Content: []byte("x")})
		require.NoError(t, err)
		assert.False(t, seen[f.Path()])
		seen[f.Path()] = true
		defer f.Release()
	}
}

func TestSpoolWriteFailures(t *testing.T) {
	s := NewSpool(config.DeliveryConfig{TempDir: filepath.Join(t.TempDir(), "missing")})
	_, err := s.Write(context.Background(), &entity.RenderedDocument{Content: []byte("x")})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrStorage))

	_, err = s.Write(context.Background(), &entity.RenderedDocument{})
	assert.True(t, stderrors.Is(err, apperrors.ErrStorage))
}

func TestPipelineProduce(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRenderer{out: []byte("%PDF-1.4 test")}
	p := NewPipeline(NewAssembler(), r, NewSpool(config.DeliveryConfig{TempDir: dir}))

	f, err := p.Produce(context.Background(), &entity.DocumentRequest{Content: "Line1\nLine2"})
	require.NoError(t, err)
	defer f.Release()

	assert.Equal(t, 1, r.calls)
	assert.Contains(t, r.html, "Line1<br>Line2")

	b, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(b))
	assert.Equal(t, "study_material.pdf", f.Name())
}

func TestPipelineErrors(t *testing.T) {
	dir := t.TempDir()

	r := &fakeRenderer{out: []byte("x")}
	p := NewPipeline(NewAssembler(), r, NewSpool(config.DeliveryConfig{TempDir: dir}))
	_, err := p.Produce(context.Background(), &entity.DocumentRequest{})
	assert.True(t, stderrors.Is(err, apperrors.ErrInvalidParam))
	assert.Equal(t, 0, r.calls)

	p = NewPipeline(NewAssembler(), &fakeRenderer{err: stderrors.New("boom")}, NewSpool(config.DeliveryConfig{TempDir: dir}))
	_, err = p.Produce(context.Background(), &entity.DocumentRequest{Content: "x"})
	assert.True(t, stderrors.Is(err, apperrors.ErrRenderFailed))

	p = NewPipeline(NewAssembler(), &fakeRenderer{}, NewSpool(config.DeliveryConfig{TempDir: dir}))
	_, err = p.Produce(context.Background(), &entity.DocumentRequest{Content: "x"})
	assert.True(t, stderrors.Is(err, apperrors.ErrRenderFailed))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
