package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("STUDY_TEST_PORT", "9090")

	assert.Equal(t, "port: 9090", expandEnv("port: ${STUDY_TEST_PORT}"))
	assert.Equal(t, "port: 9090", expandEnv("port: ${STUDY_TEST_PORT:8080}"))
	assert.Equal(t, "model: flash", expandEnv("model: ${STUDY_TEST_UNSET_MODEL:flash}"))
	assert.Equal(t, "key: ", expandEnv("key: ${STUDY_TEST_UNSET_KEY:}"))
	assert.Equal(t, "raw: ${STUDY_TEST_UNSET_RAW}", expandEnv("raw: ${STUDY_TEST_UNSET_RAW}"))
}

func TestLoadFromDefaultsOnly(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := LoadFrom(t.TempDir(), "test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, DefaultLLMModel, cfg.LLM.Model)
	assert.InDelta(t, DefaultTemperature, cfg.LLM.Temperature, 1e-9)
	assert.InDelta(t, DefaultTopP, cfg.LLM.TopP, 1e-9)
	assert.Equal(t, DefaultTopK, cfg.LLM.TopK)
	assert.Equal(t, DefaultMaxOutputTokens, cfg.LLM.MaxOutputTokens)
	assert.Equal(t, DefaultSafetyThreshold, cfg.LLM.Safety.Threshold)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Renderer.Timeout)
	assert.Equal(t, DefaultDownloadName, cfg.Delivery.DownloadName)
	assert.Equal(t, DefaultPlaceholderWidth, cfg.Placeholder.Width)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  http:
    port: 8081
llm:
  model: ${STUDY_TEST_MODEL:gemini-base}
renderer:
  timeout: 15s
`)
	writeFile(t, dir, "config.staging.yaml", `
server:
  http:
    port: 8082
`)
	t.Setenv("STUDY_TEST_MODEL", "gemini-custom")

	cfg, err := LoadFrom(dir, "staging")
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Server.HTTP.Port)
	assert.Equal(t, "gemini-custom", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.Renderer.Timeout)
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
llm:
  top_p: 1.5
`)

	_, err := LoadFrom(dir, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.top_p")
}

func TestLoadFromRejectsNonPDFDownloadName(t *testing.T) {
	for _, name := range []string{"notes.txt", "study_material", ".pdf", "../x.pdf", `dir\x.pdf`} {
		dir := t.TempDir()
		writeFile(t, dir, "config.yaml", "delivery:\n  download_name: '"+name+"'\n")

		_, err := LoadFrom(dir, "test")
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "delivery.download_name")
	}

	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "delivery:\n  download_name: Notes.PDF\n")
	cfg, err := LoadFrom(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "Notes.PDF", cfg.Delivery.DownloadName)
}
