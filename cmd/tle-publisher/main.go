// Command tle-publisher reads a TLE catalog from a file or URL and publishes
// it to the catalog topic in JSON chunks.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/config"
	"github.com/TemirB/satrec-registry/internal/kafka"
	"github.com/TemirB/satrec-registry/internal/tle"
)

func main() {
	cfg := config.LoadPublisher()

	file := flag.String("file", "", "read the catalog from this file (- for stdin)")
	url := flag.String("url", cfg.SourceURL, "fetch the catalog from this URL")
	chunk := flag.Int("chunk", cfg.ChunkSize, "entries per Kafka message")
	brokers := flag.String("brokers", strings.Join(cfg.Brokers, ","), "comma-separated Kafka brokers")
	topic := flag.String("topic", cfg.Topic, "catalog topic")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := readCatalog(ctx, *file, *url, logger)
	if err != nil {
		logger.Fatal("Can't read catalog", zap.Error(err))
	}

	entries, err := tle.Parse(bytes.NewReader(raw), logger)
	if err != nil {
		logger.Fatal("Can't parse catalog", zap.Error(err))
	}
	logger.Info("Catalog parsed", zap.Int("entries", len(entries)))

	pub := kafka.NewPublisher(kafka.NewWriter(strings.Split(*brokers, ","), *topic), *chunk, logger)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("writer close", zap.Error(err))
		}
	}()

	n, err := pub.Publish(ctx, entries)
	if err != nil {
		logger.Error("Publish failed", zap.Error(err))
		return
	}
	logger.Info("Done", zap.Int("messages", n), zap.String("topic", *topic))
}

func readCatalog(ctx context.Context, file, url string, logger *zap.Logger) ([]byte, error) {
	switch {
	case file == "-":
		return io.ReadAll(os.Stdin)
	case file != "":
		return os.ReadFile(file)
	default:
		data, err := tle.NewFetcher(url, logger).Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		return data, nil
	}
}
