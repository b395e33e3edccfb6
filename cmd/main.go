package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	sc "noisyspell/internal/corrector"
	"noisyspell/internal/customdict"
	"noisyspell/internal/server"
	"noisyspell/internal/snapshot"
	"noisyspell/pkg/options"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(getenv("LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)

	cfg := sc.NewConfig(
		options.WithMaxEdits(getEnvInt("MAX_EDITS", options.DefaultOptions.MaxEdits)),
		options.WithMaxStates(getEnvInt("MAX_STATES", options.DefaultOptions.MaxStates)),
	)
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid config", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	model, err := loadModel(ctx, cfg, snapshot.NewRedisStore(client), logger)
	cancel()
	if err != nil {
		fatal(logger, "init error", err)
	}

	dict := customdict.New(client)
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	corrector, err := sc.NewSpellCorrector(ctx, cfg, model, dict, logger)
	cancel()
	if err != nil {
		fatal(logger, "init error", err)
	}

	mux := http.NewServeMux()
	server.NewHandler(corrector, logger).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":     "healthy",
			"vocabulary": corrector.Model().LM.Len(),
		}
		if err := dict.Ping(r.Context()); err != nil {
			status["custom_dict"] = "unavailable"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	})

	srv := &http.Server{
		Addr:         getenv("HTTP_ADDR", ":8080"),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fatal(logger, "server error", err)
	}
}

// loadModel prefers the snapshot file, then the snapshot published to Redis,
// and trains from the dataset files when neither exists. A freshly trained
// model is written back to SNAPSHOT_PATH.
func loadModel(ctx context.Context, cfg sc.CorrectorConfig, store *snapshot.RedisStore, logger *slog.Logger) (*sc.Model, error) {
	path := getenv("SNAPSHOT_PATH", "model.nspl")
	lmOpts := cfg.LanguageModelOptions()

	m, err := snapshot.Load(path, lmOpts...)
	if err == nil {
		logger.Info("snapshot loaded", "path", path, "vocabulary", m.LM.Len())
		return m, nil
	}
	if !errors.Is(err, snapshot.ErrNotFound) {
		return nil, err
	}

	m, err = store.Get(ctx, lmOpts...)
	if err == nil {
		logger.Info("snapshot fetched", "redis_key", store.Key(), "vocabulary", m.LM.Len())
		return m, nil
	}
	logger.Warn("no snapshot available, training", "path", path, "error", err)

	data, err := sc.LoadTrainingData(
		getenv("CORPUS_PATH", "corpus.txt"),
		getenv("LEXICON_PATH", "lexicon.csv"),
		getenv("TYPOS_PATH", "typos.csv"),
	)
	if err != nil {
		return nil, err
	}
	m, err = sc.Train(cfg, data, logger)
	if err != nil {
		return nil, err
	}
	if err := snapshot.Save(path, m); err != nil {
		logger.Warn("failed to save snapshot", "path", path, "error", err)
	}
	return m, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
