package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Providers understood by AIConfig.
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// DefaultHistoryLimit is how many prior turns are forwarded to the model.
const DefaultHistoryLimit = 10

// Config aggregates the backend settings.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Log    LogConfig
}

// Load reads the backend configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Log: loadLogConfig()}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	origins := getEnvList("ALLOWED_ORIGINS", []string{"*"})

	if strings.Contains(port, ":") {
		// allow ":8000" or "127.0.0.1:8000"
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// LogConfig selects the backend log level.
type LogConfig struct {
	Level string
}

func loadLogConfig() LogConfig {
	return LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")}
}

// AIConfig describes the model provider behind /chat.
type AIConfig struct {
	Provider     string
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	HistoryLimit int
	PersonaFile  string
	PersonaID    string
	Locale       string
}

// Enabled reports whether enough credentials were supplied for the provider.
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	switch c.Provider {
	case ProviderOpenAI:
		// local OpenAI-compatible servers usually need no key, only a base URL
		return c.APIKey != "" || c.BaseURL != ""
	default:
		return c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != "")
	}
}

// NewChatModel builds the Ark chat model used by the eino chain.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk {
		return nil, fmt.Errorf("chat model requested for provider %q", c.Provider)
	}
	if !c.Enabled() {
		return nil, fmt.Errorf("missing Ark credentials or model: set ARK_API_KEY and MODEL, or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		temperature = floatPtr(0.7)
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}
	if topP == nil {
		topP = floatPtr(0.9)
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens == nil {
		maxTokens = intPtr(512)
	}

	historyLimit := DefaultHistoryLimit
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 0 {
			historyLimit = 0
		} else {
			historyLimit = *override
		}
	}

	cfg := AIConfig{
		Provider:     provider,
		Model:        strings.TrimSpace(os.Getenv("MODEL")),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		HistoryLimit: historyLimit,
		PersonaFile:  strings.TrimSpace(os.Getenv("PERSONA_FILE")),
		PersonaID:    strings.TrimSpace(os.Getenv("PERSONA_ID")),
		Locale:       getEnvOrDefault("LOCALE", "mn"),
	}

	switch provider {
	case ProviderArk:
		cfg.APIKey = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
		cfg.AccessKey = strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY"))
		cfg.SecretKey = strings.TrimSpace(os.Getenv("ARK_SECRET_KEY"))
		cfg.BaseURL = getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3")
		cfg.Region = getEnvOrDefault("ARK_REGION", "cn-beijing")
	case ProviderOpenAI:
		cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
		if cfg.Model == "" {
			cfg.Model = "Qwen/Qwen2.5-1.5B-Instruct"
		}
	}

	return cfg, nil
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
