package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is reported by Validate when no completion backend credential is configured.
var ErrMissingAPIKey = errors.New("LLM_API_KEY is not configured")

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	CORSAllowOrigins   []string
	LLMProvider        string
	LLMBaseURL         string
	LLMAPIKey          string
	LLMModel           string
	RequestTimeout     time.Duration
	DatabaseURL        string
	DBPool             DBPool
	DailyAnalysisLimit int
	RateLimitRPS       float64
	RateLimitBurst     int
}

// DBPool overrides the usage ledger pool defaults; zero fields keep the defaults.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Load reads configuration from .env files, an optional config.yaml and the environment.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("llm_provider", "openai")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("lovable_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("llm_model", "")
	v.SetDefault("request_timeout", "")
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_open_conns", 0)
	v.SetDefault("db_max_idle_conns", 0)
	v.SetDefault("db_conn_max_lifetime", "0s")
	v.SetDefault("db_ping_timeout", "0s")
	v.SetDefault("daily_analysis_limit", 0)
	v.SetDefault("rate_limit_rps", 1.0)
	v.SetDefault("rate_limit_burst", 5)
}

func fromViper(v *viper.Viper) (Config, error) {
	provider := normalizeProvider(v.GetString("llm_provider"))
	timeout, err := parseTimeout(v.GetString("request_timeout"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               v.GetString("port"),
		Env:                normalizeEnv(v.GetString("env")),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		CORSAllowOrigins:   splitAndTrim(v.GetString("cors_allow_origins")),
		LLMProvider:        provider,
		LLMBaseURL:         strings.TrimSpace(v.GetString("llm_base_url")),
		LLMAPIKey:          resolveAPIKey(v, provider),
		LLMModel:           strings.TrimSpace(v.GetString("llm_model")),
		RequestTimeout:     timeout,
		DatabaseURL:        strings.TrimSpace(v.GetString("database_url")),
		DBPool: DBPool{
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			PingTimeout:     v.GetDuration("db_ping_timeout"),
		},
		DailyAnalysisLimit: v.GetInt("daily_analysis_limit"),
		RateLimitRPS:       v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
	}
	if cfg.DailyAnalysisLimit < 0 {
		cfg.DailyAnalysisLimit = 0
	}
	return cfg, nil
}

// Validate reports fatal configuration problems.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func resolveAPIKey(v *viper.Viper, provider string) string {
	keys := []string{"llm_api_key", "lovable_api_key"}
	if provider == "gemini" {
		keys = []string{"llm_api_key", "gemini_api_key"}
	}
	for _, k := range keys {
		if val := strings.TrimSpace(v.GetString(k)); val != "" {
			return val
		}
	}
	return ""
}

// parseTimeout accepts Go durations ("45s") or a bare number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("REQUEST_TIMEOUT must not be negative")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("REQUEST_TIMEOUT invalid: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return d, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	default:
		return "openai"
	}
}
