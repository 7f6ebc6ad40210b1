package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	defaultServerPort           = 8080
	defaultBracketDeadline      = 7 * 24 * time.Hour
	defaultRecentOpponentWindow = 5
	defaultSweepCron            = "*/15 * * * *"
	defaultMatchmakingRateLimit = 60
)

// Config holds every setting the service reads at startup.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// BracketDeadline is added to generation time to stamp each match's deadline.
	BracketDeadline      time.Duration
	RecentOpponentWindow int
	SweepCron            string
	// MatchmakingRateLimit is requests per minute per client IP; 0 disables it.
	MatchmakingRateLimit int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	deadline := defaultBracketDeadline
	if raw := strings.TrimSpace(os.Getenv("BRACKET_DEADLINE")); raw != "" {
		deadline, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BRACKET_DEADLINE environment variable: %w", err)
		}
		if deadline <= 0 {
			return nil, fmt.Errorf("BRACKET_DEADLINE must be positive, got %s", deadline)
		}
	}

	window, err := intFromEnv("RECENT_OPPONENT_WINDOW", defaultRecentOpponentWindow)
	if err != nil {
		return nil, err
	}
	if window < 0 {
		return nil, fmt.Errorf("RECENT_OPPONENT_WINDOW must not be negative, got %d", window)
	}

	sweepCron := strings.TrimSpace(os.Getenv("SWEEP_CRON"))
	if sweepCron == "" {
		sweepCron = defaultSweepCron
	}
	if _, err := cron.ParseStandard(sweepCron); err != nil {
		return nil, fmt.Errorf("invalid SWEEP_CRON environment variable: %w", err)
	}

	rateLimit, err := intFromEnv("MATCHMAKING_RATE_LIMIT", defaultMatchmakingRateLimit)
	if err != nil {
		return nil, err
	}
	if rateLimit < 0 {
		return nil, fmt.Errorf("MATCHMAKING_RATE_LIMIT must not be negative, got %d", rateLimit)
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		BracketDeadline:      deadline,
		RecentOpponentWindow: window,
		SweepCron:            sweepCron,
		MatchmakingRateLimit: rateLimit,
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
