// Command review analyzes a single PGN game and prints the review result
// as JSON on stdout, streaming progress/move events to stderr as it goes.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/chessreview/review/internal/book"
	"github.com/chessreview/review/internal/chessrules"
	"github.com/chessreview/review/internal/config"
	"github.com/chessreview/review/internal/engine"
	"github.com/chessreview/review/internal/logging"
	"github.com/chessreview/review/internal/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	pgn, err := readPGN(os.Args)
	if err != nil {
		logger.Fatal("failed to read PGN", zap.Error(err))
	}

	game, err := chessrules.ParsePGN(pgn)
	if err != nil {
		logger.Fatal("failed to parse PGN", zap.Error(err))
	}

	engineConfig := engine.Config{
		BinaryPath: cfg.Stockfish.BinaryPath,
		Threads:    cfg.Stockfish.Threads,
		Hash:       cfg.Stockfish.Hash,
		MultiPV:    cfg.Stockfish.MultiPV,
	}

	pool, err := engine.NewPool(cfg.WorkerPoolSize, engineConfig, logger)
	if err != nil {
		logger.Fatal("failed to start engine pool", zap.Error(err))
	}
	defer pool.Dispose()

	bookTable, err := book.New()
	if err != nil {
		logger.Fatal("failed to compile opening book", zap.Error(err))
	}

	driver := review.NewDriver(pool, bookTable, cfg, logger)

	encoder := json.NewEncoder(os.Stderr)
	opts := review.Options{
		OnProgress: func(ev review.ProgressEvent) { _ = encoder.Encode(ev) },
		OnMove:     func(ev review.MoveEvent) { _ = encoder.Encode(ev) },
	}

	result, err := driver.Review(game, opts)
	if err != nil {
		_ = json.NewEncoder(os.Stderr).Encode(errorEventFor(err))
		logger.Fatal("review failed", zap.Error(err))
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		logger.Fatal("failed to encode result", zap.Error(err))
	}
}

// readPGN reads PGN text from the file named in argv[1], or from stdin if
// no argument is given.
func readPGN(argv []string) (string, error) {
	if len(argv) > 1 {
		data, err := os.ReadFile(argv[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func errorEventFor(err error) map[string]string {
	return map[string]string{"type": "error", "message": err.Error()}
}
