package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"applygen-backend/internal/shared/telemetry"
)

// ErrConfiguration is returned when required settings are missing or invalid.
var ErrConfiguration = errors.New("configuration error")

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultModel        = "gpt-4o"
	defaultGeminiModel  = "gemini-2.0-flash"
	defaultBatchWorkers = 5
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	CORSAllowOrigin  []string
	ObjectStoreType  string
	LocalStoreDir    string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	DatabaseURL      string
	LLMProvider      string
	LLMModel         string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	LLMRatePerMinute int
	BatchWorkers     int
	RenderEngine     string
	ChromePath       string
	CatalogPath      string
	QueueURL         string
	JWTSecret        string
	// RandomSeed is zero when sampling should be seeded from the clock.
	RandomSeed int64
	LogLevel   string
	LogFormat  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderOpenAI))
	model := getEnv("LLM_MODEL", "")
	if model == "" {
		model = defaultModel
		if provider == ProviderGemini {
			model = defaultGeminiModel
		}
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGIN", "http://localhost:5173")),
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:      getEnv("S3_SSE_KMS_KEY_ID", ""),
		DatabaseURL:      dbURL,
		LLMProvider:      provider,
		LLMModel:         model,
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LLMRatePerMinute: getInt("LLM_RATE_PER_MINUTE", 0),
		BatchWorkers:     getInt("BATCH_WORKERS", defaultBatchWorkers),
		RenderEngine:     strings.ToLower(getEnv("RENDER_ENGINE", "pdf")),
		ChromePath:       getEnv("CHROME_PATH", ""),
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		QueueURL:         getEnv("QUEUE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		RandomSeed:       int64(getInt("RANDOM_SEED", 0)),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
	}
}

// APIKey returns the key for the selected provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Validate reports settings that would make batch generation impossible.
func (c Config) Validate() error {
	if err := c.ValidateLLM(); err != nil {
		return err
	}
	return c.ValidateInfra()
}

// ValidateLLM checks the provider selection and its API key.
func (c Config) ValidateLLM() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", ErrConfiguration, c.LLMProvider)
	}
	if strings.TrimSpace(c.APIKey()) == "" {
		return fmt.Errorf("%w: API key for provider %s is not set", ErrConfiguration, c.LLMProvider)
	}
	return nil
}

// ValidateInfra checks rendering, storage and auth settings.
func (c Config) ValidateInfra() error {
	switch c.RenderEngine {
	case "pdf", "chrome":
	default:
		return fmt.Errorf("%w: unknown RENDER_ENGINE %q", ErrConfiguration, c.RenderEngine)
	}
	if c.ObjectStoreType == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("%w: S3_BUCKET is required when OBJECT_STORE=s3", ErrConfiguration)
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required in production", ErrConfiguration)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
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
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return n
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

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
