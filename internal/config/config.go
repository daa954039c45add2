// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"character-chat/internal/domain"
)

// Collection backends.
const (
	BackendNone     = ""
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

// Engagement backends.
const (
	EngagementFile   = "file"
	EngagementSQLite = "sqlite"
	EngagementRedis  = "redis"
	EngagementMemory = "memory"
)

const DefaultStateDir = ".charchat"

type Config struct {
	Environment string
	LogLevel    string
	HTTPAddr    string

	ParamPrefix  string
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	OpenAIModel      string
	AnthropicModel   string
	GeminiModel      string
	OpenAIBaseURL    string
	AnthropicBaseURL string
	MaxTokens        int
	Temperature      float64
	ProviderTimeout  time.Duration
	DefaultProvider  domain.ProviderMode
	MaxMessageLength int

	CollectionBackend string
	DatabaseURL       string
	SQLitePath        string
	CollectionTable   string

	EngagementBackend string
	EngagementPath    string
	EngagementScope   string
	RedisAddr         string

	APIBaseURL  string
	SurveyDelay time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults and validating the
// backend selections.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	env := envReader{lookup: lookup}
	cfg := Config{
		Environment: env.str("APP_ENV", "development"),
		LogLevel:    env.str("LOG_LEVEL", "info"),
		HTTPAddr:    env.str("HTTP_ADDR", ":8080"),

		ParamPrefix:  strings.TrimRight(env.str("PARAM_PREFIX", ""), "/"),
		OpenAIKey:    env.str("OPENAI_API_KEY", ""),
		AnthropicKey: env.str("ANTHROPIC_API_KEY", ""),
		GeminiKey:    env.str("GEMINI_API_KEY", ""),

		OpenAIModel:      env.str("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicModel:   env.str("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest"),
		GeminiModel:      env.str("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		OpenAIBaseURL:    env.str("OPENAI_BASE_URL", ""),
		AnthropicBaseURL: env.str("ANTHROPIC_BASE_URL", ""),
		MaxTokens:        env.integer("COMPLETION_MAX_TOKENS", 1000),
		Temperature:      env.float("COMPLETION_TEMPERATURE", 0.7),
		ProviderTimeout:  env.duration("PROVIDER_TIMEOUT", 30*time.Second),
		DefaultProvider:  domain.ProviderMode(strings.ToLower(env.str("DEFAULT_PROVIDER", string(domain.ProviderOpenAI)))),
		MaxMessageLength: env.integer("MAX_MESSAGE_LENGTH", 2000),

		CollectionBackend: strings.ToLower(env.str("COLLECTION_BACKEND", BackendNone)),
		DatabaseURL:       env.str("DATABASE_URL", ""),
		SQLitePath:        env.str("SQLITE_PATH", filepath.Join(DefaultStateDir, "collection.db")),
		CollectionTable:   env.str("COLLECTION_TABLE", ""),

		EngagementBackend: strings.ToLower(env.str("ENGAGEMENT_BACKEND", EngagementFile)),
		EngagementPath:    env.str("ENGAGEMENT_PATH", ""),
		EngagementScope:   env.str("ENGAGEMENT_SCOPE", "default"),
		RedisAddr:         env.str("REDIS_ADDR", ""),

		APIBaseURL:  env.str("API_BASE_URL", ""),
		SurveyDelay: env.duration("SURVEY_DELAY", 2*time.Second),
	}
	if err := errors.Join(env.errs...); err != nil {
		return Config{}, err
	}
	if cfg.EngagementPath == "" {
		name := "engagement.json"
		if cfg.EngagementBackend == EngagementSQLite {
			name = "engagement.db"
		}
		cfg.EngagementPath = filepath.Join(DefaultStateDir, name)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.DefaultProvider {
	case domain.ProviderOpenAI, domain.ProviderAnthropic, domain.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("config: DEFAULT_PROVIDER %q is not one of openai, anthropic, gemini", c.DefaultProvider))
	}
	switch c.CollectionBackend {
	case BackendNone, BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("config: DATABASE_URL is required for the postgres backend"))
		}
	case BackendDynamoDB:
		if c.CollectionTable == "" {
			errs = append(errs, errors.New("config: COLLECTION_TABLE is required for the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown COLLECTION_BACKEND %q", c.CollectionBackend))
	}
	switch c.EngagementBackend {
	case EngagementFile, EngagementSQLite, EngagementMemory:
	case EngagementRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("config: REDIS_ADDR is required for the redis engagement backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown ENGAGEMENT_BACKEND %q", c.EngagementBackend))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, errors.New("config: COMPLETION_MAX_TOKENS must be positive"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, errors.New("config: COMPLETION_TEMPERATURE must be within [0, 2]"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func (c Config) CompletionConfig(mode domain.ProviderMode) domain.CompletionConfig {
	model := c.OpenAIModel
	switch mode {
	case domain.ProviderAnthropic:
		model = c.AnthropicModel
	case domain.ProviderGemini:
		model = c.GeminiModel
	}
	return domain.CompletionConfig{Model: model, MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s: %w", key, err))
		return def
	}
	return n
}

func (e *envReader) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s: %w", key, err))
		return def
	}
	return f
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s: %w", key, err))
		return def
	}
	return d
}
