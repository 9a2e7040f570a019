// Package config loads all environment-carried settings for the review
// service: engine/pool sizing, analysis timing, progressive-depth
// schedule, and the classification threshold profile.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chessreview/review/internal/classify"
)

// Config holds all service configuration.
type Config struct {
	// Stockfish / engine settings
	Stockfish StockfishConfig

	// Worker pool settings
	WorkerPoolSize int

	// Analysis defaults
	DefaultDepth    int
	MinDepth        int
	MaxDepth        int
	AnalysisTimeout time.Duration
	AnalysisMoveMs  int

	// Progressive search-depth schedule, see classify.ProgressiveDepth.
	Depth classify.DepthSchedule

	// Classification threshold profile.
	Thresholds classify.Thresholds

	// Logging
	LogLevel  string
	LogFormat string
}

// StockfishConfig holds Stockfish-specific settings.
type StockfishConfig struct {
	BinaryPath string
	Threads    int
	Hash       int // MB
	MultiPV    int
}

// Load loads configuration from the environment, falling back to a
// ".env" file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Stockfish: StockfishConfig{
			BinaryPath: getEnv("STOCKFISH_PATH", "/usr/games/stockfish"),
			Threads:    getEnvInt("STOCKFISH_THREADS", 1),
			Hash:       getEnvInt("STOCKFISH_HASH", 128),
			MultiPV:    getEnvInt("STOCKFISH_MULTI_PV", 3),
		},

		WorkerPoolSize: getEnvInt("WORKER_POOL_SIZE", 4),

		DefaultDepth:    getEnvInt("DEFAULT_DEPTH", 18),
		MinDepth:        getEnvInt("MIN_DEPTH", 6),
		MaxDepth:        getEnvInt("MAX_DEPTH", 24),
		AnalysisTimeout: time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 8)) * time.Second,
		// Zero by default so the progressive depth schedule and the retry
		// wrapper's depth reduction actually reach the engine: the worker
		// prefers movetime over depth whenever this is nonzero. Set it
		// explicitly to trade the depth schedule for a fixed time budget.
		AnalysisMoveMs: getEnvInt("ANALYSIS_MOVETIME_MS", 0),

		Depth: classify.DepthSchedule{
			Start:      getEnvInt("DEPTH_START", 12),
			Increment:  getEnvInt("DEPTH_INCREMENT", 1),
			EveryKPlys: getEnvInt("DEPTH_EVERY_K", 10),
			Min:        getEnvInt("DEPTH_MIN", 10),
			Max:        getEnvInt("DEPTH_MAX", 20),
		},

		Thresholds: classify.DefaultThresholds(),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
