// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// 文本生成固定参数（与线上模型调用保持一致）
const (
	DefaultLLMProvider     = "gemini"
	DefaultLLMModel        = "gemini-2.0-flash"
	DefaultTemperature     = 0.7
	DefaultTopP            = 1.0
	DefaultTopK            = 32
	DefaultMaxOutputTokens = 4096
	DefaultSafetyThreshold = "medium_and_above"
)

// 占位图与交付固定参数
const (
	DefaultPlaceholderBaseURL = "https://placehold.co"
	DefaultPlaceholderWidth   = 600
	DefaultPlaceholderHeight  = 400
	DefaultPlaceholderMaxText = 50
	DefaultDownloadName       = "study_material.pdf"
)

var envPattern = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// Load 加载配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量
func Load() (*Config, error) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	return LoadFrom(dir, env)
}

// LoadFrom 从指定目录加载配置，主配置文件缺失时只使用默认值和环境变量
func LoadFrom(dir, env string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置
	if err := loadConfigFile(v, filepath.Join(dir, "config.yaml"), true); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if err := loadConfigFile(v, envFile, true); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值 (兜底)
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 兼容原有的 GEMINI_API_KEY 环境变量
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置取值范围
func (c *Config) Validate() error {
	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("invalid server.http.port: %d", c.Server.HTTP.Port)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("invalid llm.temperature: %v", c.LLM.Temperature)
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		return fmt.Errorf("invalid llm.top_p: %v", c.LLM.TopP)
	}
	if c.LLM.TopK < 0 {
		return fmt.Errorf("invalid llm.top_k: %d", c.LLM.TopK)
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid llm.max_output_tokens: %d", c.LLM.MaxOutputTokens)
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		return fmt.Errorf("invalid llm.retry.max_attempts: %d", c.LLM.Retry.MaxAttempts)
	}
	if c.Renderer.Timeout <= 0 {
		return fmt.Errorf("invalid renderer.timeout: %s", c.Renderer.Timeout)
	}
	if c.Renderer.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid renderer.max_concurrent: %d", c.Renderer.MaxConcurrent)
	}
	if c.Placeholder.Width <= 0 || c.Placeholder.Height <= 0 {
		return fmt.Errorf("invalid placeholder size: %dx%d", c.Placeholder.Width, c.Placeholder.Height)
	}
	if err := validateDownloadName(c.Delivery.DownloadName); err != nil {
		return err
	}
	return nil
}

// validateDownloadName 下载文件名必须是不含路径的 .pdf 文件名
func validateDownloadName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, `/\"`) || !strings.EqualFold(filepath.Ext(name), ".pdf") || len(name) == len(".pdf") {
		return fmt.Errorf("invalid delivery.download_name: %q", name)
	}
	return nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnv(string(content))

	reader := strings.NewReader(expanded)
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		// 手动标记已加载文件，后续文件走 MergeConfig
		v.SetConfigFile(path)
	} else {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("failed to merge processed config %s: %w", path, err)
		}
	}

	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符
func expandEnv(s string) string {
	// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPattern.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match
	})
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	// 应用默认值
	v.SetDefault("app.name", "study-assistant-api")
	v.SetDefault("app.version", "v0.0.0")
	v.SetDefault("app.env", "development")

	// HTTP 服务器默认值
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "180s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.max_body_bytes", 1<<20)
	v.SetDefault("server.http.static_dir", "")

	// 文本生成默认值
	v.SetDefault("llm.provider", DefaultLLMProvider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", DefaultLLMModel)
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.top_p", DefaultTopP)
	v.SetDefault("llm.top_k", DefaultTopK)
	v.SetDefault("llm.max_output_tokens", DefaultMaxOutputTokens)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.safety.threshold", DefaultSafetyThreshold)
	v.SetDefault("llm.retry.max_attempts", 1)
	v.SetDefault("llm.retry.backoff.initial", "500ms")
	v.SetDefault("llm.retry.backoff.max", "5s")
	v.SetDefault("llm.retry.backoff.multiplier", 2.0)

	// 渲染默认值
	v.SetDefault("renderer.engine", "wkhtmltopdf")
	v.SetDefault("renderer.binary_path", "")
	v.SetDefault("renderer.page_size", "A4")
	v.SetDefault("renderer.dpi", 96)
	v.SetDefault("renderer.timeout", "60s")
	v.SetDefault("renderer.max_concurrent", 4)

	// 交付默认值
	v.SetDefault("delivery.temp_dir", "")
	v.SetDefault("delivery.download_name", DefaultDownloadName)

	// 占位图默认值
	v.SetDefault("placeholder.base_url", DefaultPlaceholderBaseURL)
	v.SetDefault("placeholder.width", DefaultPlaceholderWidth)
	v.SetDefault("placeholder.height", DefaultPlaceholderHeight)
	v.SetDefault("placeholder.max_text_length", DefaultPlaceholderMaxText)

	// 可观测性默认值
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.insecure", true)
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	// CORS 默认值
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "X-Request-ID"})
}
