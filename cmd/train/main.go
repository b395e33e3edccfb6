// Command train builds a model from a corpus, a lexicon and labelled typos
// and writes it as a snapshot, optionally publishing it to Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	sc "noisyspell/internal/corrector"
	"noisyspell/internal/snapshot"
	"noisyspell/pkg/options"
)

func main() {
	corpus := flag.String("corpus", getenv("CORPUS_PATH", "corpus.txt"), "whitespace tokenized clean text")
	lexicon := flag.String("lexicon", getenv("LEXICON_PATH", "lexicon.csv"), "word,frequency CSV")
	typos := flag.String("typos", getenv("TYPOS_PATH", "typos.csv"), "typo,correct CSV")
	out := flag.String("out", getenv("SNAPSHOT_PATH", "model.nspl"), "snapshot output path")
	scale := flag.Float64("scale", options.DefaultOptions.FrequencyScale, "lexicon frequency divisor")
	publish := flag.String("redis", "", "publish the snapshot to this Redis address")
	key := flag.String("redis-key", snapshot.DefaultRedisKey, "Redis key for the published snapshot")
	logLevel := flag.String("log-level", getenv("LOG_LEVEL", "info"), "debug, info, warn or error")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	}))

	if err := run(logger, *corpus, *lexicon, *typos, *out, *scale, *publish, *key); err != nil {
		logger.Error("training failed", "error", err)
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, corpus, lexicon, typos, out string, scale float64, publish, key string) error {
	start := time.Now()
	cfg := sc.NewConfig(options.WithFrequencyScale(scale))

	data, err := sc.LoadTrainingData(corpus, lexicon, typos)
	if err != nil {
		return err
	}
	logger.Info("datasets loaded",
		"corpus_tokens", len(data.Corpus),
		"lexicon_rows", len(data.Lexicon),
		"labelled_pairs", len(data.Typos),
	)

	m, err := sc.Train(cfg, data, logger)
	if err != nil {
		return err
	}
	if err := snapshot.Save(out, m); err != nil {
		return err
	}
	logger.Info("snapshot written", "path", out, "elapsed", time.Since(start))

	if publish == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     publish,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := snapshot.NewRedisStore(client, snapshot.WithKey(key)).Put(ctx, m); err != nil {
		return err
	}
	logger.Info("snapshot published", "redis", publish, "key", key)
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
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
