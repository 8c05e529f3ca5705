package cmd

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Encoder EncoderConfig `mapstructure:"encoder"`
	Fusion  FusionConfig  `mapstructure:"fusion"`
}

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	MaxUploadMB      int64         `mapstructure:"max-upload-mb"`
	RateLimitPerMin  int           `mapstructure:"rate-limit-per-min"`
	CORSAllowOrigins []string      `mapstructure:"cors-allow-origins"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown-timeout"`
}

type LLMConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServerType  string        `mapstructure:"server-type"`
	BaseURL     string        `mapstructure:"base-url"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	TopP        float64       `mapstructure:"top-p"`
	MaxTokens   int           `mapstructure:"max-tokens"`
	APIKey      string        `mapstructure:"api-key"`
	APIKeyFile  string        `mapstructure:"api-key-file"`
}

type EncoderConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base-url"`
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheSize  int           `mapstructure:"cache-size"`
	MaxRetries int           `mapstructure:"max-retries"`
}

type FusionConfig struct {
	ProbeTimeout      time.Duration `mapstructure:"probe-timeout"`
	ProbeCacheTTL     time.Duration `mapstructure:"probe-cache-ttl"`
	MaxDocumentTokens int           `mapstructure:"max-document-tokens"`
	MaxLogLength      int           `mapstructure:"max-log-length"`
}

// envBindings maps config keys to the environment variables deployments already set.
var envBindings = map[string][]string{
	"server.port":          {"PORT"},
	"llm.enabled":          {"ENABLE_LLM"},
	"llm.server-type":      {"LLM_SERVER_TYPE"},
	"llm.base-url":         {"LLM_BASE_URL"},
	"llm.model":            {"LLM_MODEL"},
	"llm.timeout":          {"LLM_TIMEOUT"},
	"llm.temperature":      {"LLM_TEMPERATURE"},
	"llm.max-tokens":       {"LLM_MAX_TOKENS"},
	"llm.api-key-file":     {"LLM_API_KEY_FILE", "GEMINI_API_KEY_FILE"},
	"encoder.provider":     {"ENCODER_PROVIDER"},
	"encoder.model":        {"ENCODER_MODEL"},
	"encoder.base-url":     {"ENCODER_BASE_URL"},
	"encoder.api-key-file": {"ENCODER_API_KEY_FILE", "GEMINI_API_KEY_FILE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.max-upload-mb", 16)
	v.SetDefault("server.rate-limit-per-min", 60)
	v.SetDefault("server.cors-allow-origins", []string{"*"})
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 120*time.Second)
	v.SetDefault("server.shutdown-timeout", 15*time.Second)

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.server-type", "ollama")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.top-p", 0.9)
	v.SetDefault("llm.max-tokens", 1000)

	v.SetDefault("encoder.provider", "local")
	v.SetDefault("encoder.timeout", 30*time.Second)
	v.SetDefault("encoder.cache-size", 256)
	v.SetDefault("encoder.max-retries", 3)

	v.SetDefault("fusion.probe-timeout", 5*time.Second)
	v.SetDefault("fusion.probe-cache-ttl", 30*time.Second)
	v.SetDefault("fusion.max-document-tokens", 3000)
	v.SetDefault("fusion.max-log-length", 200)
}

func bindEnv(v *viper.Viper) error {
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("binding %s environment variables: %w", strings.Join(names, ", "), err)
		}
	}
	return nil
}

// loadConfig decodes v into a Config. Durations accept Go syntax ("45s") or
// bare integers, which are seconds.
func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &config, nil
}

func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != durationType {
			return data, nil
		}

		switch d := data.(type) {
		case int:
			return time.Duration(d) * time.Second, nil
		case int64:
			return time.Duration(d) * time.Second, nil
		case float64:
			return time.Duration(d * float64(time.Second)), nil
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil {
				return time.Duration(n) * time.Second, nil
			}
		}
		return data, nil
	}
}
