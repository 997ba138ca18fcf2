// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Renderer      RendererConfig      `yaml:"renderer" mapstructure:"renderer"`
	Delivery      DeliveryConfig      `yaml:"delivery" mapstructure:"delivery"`
	Placeholder   PlaceholderConfig   `yaml:"placeholder" mapstructure:"placeholder"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodyBytes 请求体上限
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// StaticDir 前端静态资源目录，为空时不挂载
	StaticDir string `yaml:"static_dir" mapstructure:"static_dir"`
}

// LLMConfig 文本生成模型配置，启动时构造一次后只读
type LLMConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"`
	APIKey          string        `yaml:"api_key" mapstructure:"api_key"`
	Model           string        `yaml:"model" mapstructure:"model"`
	Temperature     float64       `yaml:"temperature" mapstructure:"temperature"`
	TopP            float64       `yaml:"top_p" mapstructure:"top_p"`
	TopK            int           `yaml:"top_k" mapstructure:"top_k"`
	MaxOutputTokens int           `yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Safety          SafetyConfig  `yaml:"safety" mapstructure:"safety"`
	Retry           RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// SafetyConfig 内容安全策略
type SafetyConfig struct {
	// Threshold 拦截阈值：low_and_above / medium_and_above / only_high / none
	Threshold string `yaml:"threshold" mapstructure:"threshold"`
}

// RetryConfig 上游重试配置，MaxAttempts=1 表示不重试
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff     BackoffConfig `yaml:"backoff" mapstructure:"backoff"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration `yaml:"initial" mapstructure:"initial"`
	Max        time.Duration `yaml:"max" mapstructure:"max"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`
}

// RendererConfig HTML 转 PDF 引擎配置
type RendererConfig struct {
	Engine        string        `yaml:"engine" mapstructure:"engine"`
	BinaryPath    string        `yaml:"binary_path" mapstructure:"binary_path"`
	PageSize      string        `yaml:"page_size" mapstructure:"page_size"`
	DPI           uint          `yaml:"dpi" mapstructure:"dpi"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxConcurrent int64         `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// DeliveryConfig 文档交付配置
type DeliveryConfig struct {
	// TempDir 临时文件目录，为空时使用系统临时目录
	TempDir      string `yaml:"temp_dir" mapstructure:"temp_dir"`
	DownloadName string `yaml:"download_name" mapstructure:"download_name"`
}

// PlaceholderConfig 占位图配置
type PlaceholderConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Width         int    `yaml:"width" mapstructure:"width"`
	Height        int    `yaml:"height" mapstructure:"height"`
	MaxTextLength int    `yaml:"max_text_length" mapstructure:"max_text_length"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
