package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/config"
	"github.com/TemirB/satrec-registry/internal/domain"
	"github.com/TemirB/satrec-registry/internal/observability"
	"github.com/TemirB/satrec-registry/internal/pkg/retry"
	"github.com/TemirB/satrec-registry/internal/tle"
)

//go:generate mockgen -source handler.go -destination=handler_mock_test.go -package=handler

var (
	ErrBadPayload  = errors.New("bad payload")
	ErrUpsert      = errors.New("upsert failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Service interface {
	BulkCreateKeyed(ctx context.Context, key string, entries []domain.NewSatellite) (domain.BulkResult, error)
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

// Handler turns one Kafka message carrying a TLE catalog into one BulkCreate.
type Handler struct {
	service     Service
	breaker     brk
	logger      *zap.Logger
	metrics     observability.Metrics
	retryPolicy config.Retry
}

func NewHandler(service Service, breaker brk, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	return &Handler{
		service:     service,
		breaker:     breaker,
		logger:      logger,
		metrics:     metrics,
		retryPolicy: retryPolicy,
	}
}

// Handle is called by the consumer for a single message. Returning nil
// commits the offset. Bad input is logged and committed since replaying it
// can never succeed; only store failures keep the offset.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	start := time.Now()
	fields := []zap.Field{
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	}

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open", append(fields, zap.Error(err))...)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	entries, err := Decode(message.Value)
	if err != nil {
		h.logger.Error("dropping undecodable message", append(fields, zap.Error(err))...)
		h.metrics.ObserveKafka(ms(start), false)
		return nil
	}

	// Every attempt and every redelivery of this offset writes the same ids.
	key := batchKey(message)
	var res domain.BulkResult
	err = retry.Do(ctx, h.retryPolicy, func() error {
		var err error
		res, err = h.service.BulkCreateKeyed(ctx, key, entries)
		if isInputError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	switch {
	case err == nil:
	case isInputError(err):
		// The store answered or was never reached, so the breaker stays as is.
		h.logger.Error("dropping rejected catalog",
			append(fields, zap.Int("entries", len(entries)), zap.Error(err))...,
		)
		h.metrics.ObserveKafka(ms(start), false)
		return nil
	default:
		h.logger.Error("bulk create failed after retries",
			append(fields, zap.Int("entries", len(entries)), zap.Error(err))...,
		)
		h.breaker.Failure()
		h.metrics.ObserveKafka(ms(start), false)
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}

	h.breaker.Success()
	h.metrics.ObserveKafka(ms(start), true)
	h.logger.Info("successfully ingested catalog",
		append(fields,
			zap.Int("inserted", res.Inserted),
			zap.Int("key_bytes", len(message.Key)),
			zap.Int("value_bytes", len(message.Value)),
		)...,
	)
	return nil
}

// Decode accepts either a JSON array of entries or a plain 3-line catalog.
func Decode(value []byte) ([]domain.NewSatellite, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrBadPayload)
	}

	if trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		var entries []domain.NewSatellite
		if err := dec.Decode(&entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return entries, nil
	}

	entries, err := tle.ParseStrict(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return entries, nil
}

func batchKey(message kafkago.Message) string {
	return fmt.Sprintf("%s/%d/%d", message.Topic, message.Partition, message.Offset)
}

func isInputError(err error) bool {
	return errors.Is(err, domain.ErrMalformedTLE) || errors.Is(err, domain.ErrInvalidInput)
}

func ms(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
