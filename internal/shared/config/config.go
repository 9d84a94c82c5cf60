package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	Port            string   `validate:"required"`
	Env             string   `validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string
	LogLevel        string

	ProfilePath string

	SessionStore string `validate:"oneof=memory postgres redis"`
	DatabaseURL  string `validate:"required_if=SessionStore postgres"`
	RedisURL     string `validate:"required_if=SessionStore redis"`
	SessionTTL   time.Duration

	ObjectStoreType string `validate:"oneof=local s3"`
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string `validate:"required_if=ObjectStoreType s3"`
	S3Prefix        string
	S3Endpoint      string

	LLMTimeout time.Duration
	Providers  ProviderKeys

	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=0"`
}

// ProviderKeys carries credentials and model overrides for each hosted model.
type ProviderKeys struct {
	GroqKey          string
	GroqModel        string
	GeminiKey        string
	GeminiModel      string
	HuggingFaceKey   string
	HuggingFaceModel string
	FireworksKey     string
	FireworksModel   string
	CohereKey        string
	CohereModel      string
	AnthropicKey     string
	AnthropicModel   string
	ZhipuKey         string
	ZhipuModel       string
}

const (
	minLLMTimeout = 180 * time.Second
	maxLLMTimeout = 300 * time.Second
)

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ProfilePath:     getEnv("PROFILE_PATH", ""),
		SessionStore:    normalizeSessionStore(getEnv("SESSION_STORE", "memory")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		SessionTTL:      getDuration("SESSION_TTL", 24*time.Hour),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		LLMTimeout:      clampTimeout(getInt("LLM_TIMEOUT_SECONDS", 180)),
		Providers: ProviderKeys{
			GroqKey:          os.Getenv("GROQ_API_KEY"),
			GroqModel:        getEnv("GROQ_MODEL", "llama3-8b-8192"),
			GeminiKey:        os.Getenv("GEMINI_API_KEY"),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			HuggingFaceKey:   os.Getenv("HUGGINGFACE_API_KEY"),
			HuggingFaceModel: getEnv("HUGGINGFACE_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			FireworksKey:     os.Getenv("FIREWORKS_API_KEY"),
			FireworksModel:   getEnv("FIREWORKS_MODEL", "accounts/fireworks/models/llama-v3-8b-instruct"),
			CohereKey:        os.Getenv("COHERE_API_KEY"),
			CohereModel:      getEnv("COHERE_MODEL", "command-r"),
			AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			ZhipuKey:         os.Getenv("ZHIPU_API_KEY"),
			ZhipuModel:       getEnv("ZHIPU_MODEL", "glm-4-flash"),
		},
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

var validate = validator.New()

// Validate checks cross-field requirements such as store-specific URLs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func clampTimeout(seconds int) time.Duration {
	d := time.Duration(seconds) * time.Second
	if d < minLLMTimeout {
		return minLLMTimeout
	}
	if d > maxLLMTimeout {
		return maxLLMTimeout
	}
	return d
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

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}
