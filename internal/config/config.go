package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supervisor modes accepted by SUPERVISOR_MODE.
const (
	SupervisorNone   = "none"
	SupervisorExec   = "exec"
	SupervisorDocker = "docker"
)

// Config holds the application configuration
type Config struct {
	Environment         string
	Port                int
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	CORSAllowedOrigins  []string
	LogLevel            string
	SupervisorMode      string
	SupervisorConfig    string
	DockerHost          string
	DeployPhaseInterval time.Duration
	DraftTTL            time.Duration
	RateLimitPerMinute  int
	OTLPEndpoint        string
	TraceSampleRatio    float64
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	phaseInterval, err := time.ParseDuration(getEnv("DEPLOY_PHASE_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEPLOY_PHASE_INTERVAL: %w", err)
	}
	if phaseInterval <= 0 {
		return nil, fmt.Errorf("invalid DEPLOY_PHASE_INTERVAL: must be positive")
	}

	draftTTL, err := time.ParseDuration(getEnv("DRAFT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DRAFT_TTL: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("TRACE_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACE_SAMPLE_RATIO: %w", err)
	}
	if sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid TRACE_SAMPLE_RATIO: must be between 0 and 1")
	}

	mode := strings.ToLower(getEnv("SUPERVISOR_MODE", SupervisorNone))
	switch mode {
	case SupervisorNone, SupervisorExec, SupervisorDocker:
	default:
		return nil, fmt.Errorf("invalid SUPERVISOR_MODE %q: expected none, exec or docker", mode)
	}

	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                port,
		DatabaseURL:         getEnv("DATABASE_URL", "mongodb://localhost:27017/cosmos_platform"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins:  parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SupervisorMode:      mode,
		SupervisorConfig:    getEnv("SUPERVISOR_CONFIG", "services.yaml"),
		DockerHost:          os.Getenv("DOCKER_HOST"),
		DeployPhaseInterval: phaseInterval,
		DraftTTL:            draftTTL,
		RateLimitPerMinute:  rateLimit,
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TraceSampleRatio:    sampleRatio,
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
