// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabaseURL  string
	JWTSecretKey string
	Environment  string

	// AI gateway
	AIProvider    string // "openai" or "gemini"
	AIAPIKey      string
	AIBaseURL     string
	AIChatModel   string
	AISpeechModel string
	AISpeechVoice string
	AITemperature float32
	AITimeout     time.Duration

	// ChatStore selects where chat requests live: "memory" or "database".
	ChatStore          string
	PollInterval       time.Duration
	RateLimitPerMinute int

	// AllowedOrigins lists the browser origins that may call the API with cookies.
	AllowedOrigins []string
}

// Load reads configuration from environment variables or .env file.
// Missing DATABASE_URL or AI_API_KEY is an error; callers are expected to exit.
func Load() (*Config, error) {
	env := strings.ToLower(os.Getenv("ENV"))
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		Environment:        env,
		AIProvider:         strings.ToLower(getEnv("AI_PROVIDER", "openai")),
		AIAPIKey:           getEnv("AI_API_KEY", ""),
		AIBaseURL:          getEnv("AI_BASE_URL", ""),
		AIChatModel:        getEnv("AI_CHAT_MODEL", ""),
		AISpeechModel:      getEnv("AI_SPEECH_MODEL", "tts-1"),
		AISpeechVoice:      getEnv("AI_SPEECH_VOICE", "alloy"),
		AITemperature:      getEnvAsFloat32("AI_TEMPERATURE", 0.7),
		AITimeout:          getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
		ChatStore:          strings.ToLower(getEnv("CHAT_STORE", "memory")),
		PollInterval:       getEnvAsDuration("POLL_INTERVAL", 5*time.Second),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}
	if cfg.AIChatModel == "" {
		cfg.AIChatModel = defaultChatModel(cfg.AIProvider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	missing := []string{}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.AIAPIKey == "" {
		missing = append(missing, "AI_API_KEY")
	}
	if c.IsProduction() && c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	switch c.AIProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER must be openai or gemini, got %q", c.AIProvider)
	}
	switch c.ChatStore {
	case "memory", "database":
	default:
		return fmt.Errorf("CHAT_STORE must be memory or database, got %q", c.ChatStore)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SigningKey falls back to a development key outside production.
func (c *Config) SigningKey() []byte {
	if c.JWTSecretKey == "" {
		return []byte("finsarthi-development-only")
	}
	return []byte(c.JWTSecretKey)
}

func defaultChatModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.0-flash"
	}
	return "gpt-4o-mini"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsList splits a comma separated env var, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 32)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return float32(f)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
