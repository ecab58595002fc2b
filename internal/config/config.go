// File: internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
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
	JWTSecretKey string
	Environment  string

	DatabaseDriver     string
	DatabaseDSN        string
	DatabaseLogQueries bool

	// Inference backend.
	InferenceProvider string
	OllamaHost        string
	InferenceAPIKey   string
	ChatModel         string

	// MaxContextChars bounds the conversation text sent to the model.
	MaxContextChars   int
	StreamTimeout     time.Duration
	CompletionTimeout time.Duration

	RateLimitEnabled bool
	AllowedOrigins   []string
}

// Load reads configuration from environment variables or .env file.
// Missing production settings are fatal.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	generated, err := cfg.EnsureJWTSecret()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if generated {
		log.Println("Warning: JWT_SECRET_KEY not set; using a random key, sessions end on restart")
	}
	return cfg
}

// FromEnv builds a Config from the current environment without loading .env.
func FromEnv() *Config {
	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		Environment:        getEnv("ENV", ""),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:        getEnv("DATABASE_DSN", "llamachat.db"),
		DatabaseLogQueries: getEnvAsBool("DATABASE_LOG_QUERIES", false),
		InferenceProvider:  getEnv("INFERENCE_PROVIDER", "ollama"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://127.0.0.1:11434"),
		InferenceAPIKey:    getEnv("INFERENCE_API_KEY", ""),
		ChatModel:          getEnv("CHAT_MODEL", "llama3.1"),
		MaxContextChars:    getEnvAsInt("MAX_CONTEXT_CHARS", 125000),
		StreamTimeout:      getEnvAsDuration("STREAM_TIMEOUT", 10*time.Minute),
		CompletionTimeout:  getEnvAsDuration("INFERENCE_TIMEOUT", 5*time.Minute),
		RateLimitEnabled:   getEnvAsBool("RATE_LIMIT_ENABLED", true),
		AllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// Validate enforces the settings production cannot run without.
func (c *Config) Validate() error {
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("MAX_CONTEXT_CHARS must be positive, got %d", c.MaxContextChars)
	}
	if !c.IsProduction() {
		return nil
	}

	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if _, set := os.LookupEnv("OLLAMA_HOST"); !set {
		missing = append(missing, "OLLAMA_HOST")
	}
	if len(missing) > 0 {
		return fmt.Errorf("Missing required production environment variables: %v", missing)
	}
	return nil
}

// EnsureJWTSecret fills an empty JWT_SECRET_KEY outside production with a
// random per-process key, so tokens are never signed with an empty secret.
func (c *Config) EnsureJWTSecret() (bool, error) {
	if c.JWTSecretKey != "" || c.IsProduction() {
		return false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("generate JWT secret: %w", err)
	}
	c.JWTSecretKey = hex.EncodeToString(buf)
	return true, nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
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

// getEnvAsDuration accepts Go duration strings ("90s") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
