package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/domain"
)

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafkago.RequireAll,
	}
}

// Publisher splits a catalog into JSON array messages of at most chunkSize
// entries. Each message is ingested by the service as one bulk create.
type Publisher struct {
	writer    Writer
	chunkSize int
	logger    *zap.Logger
}

func NewPublisher(writer Writer, chunkSize int, logger *zap.Logger) *Publisher {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Publisher{writer: writer, chunkSize: chunkSize, logger: logger}
}

// Publish returns the number of messages written.
func (p *Publisher) Publish(ctx context.Context, entries []domain.NewSatellite) (int, error) {
	var msgs []kafkago.Message
	for start := 0; start < len(entries); start += p.chunkSize {
		end := min(start+p.chunkSize, len(entries))
		value, err := json.Marshal(entries[start:end])
		if err != nil {
			return 0, fmt.Errorf("marshal chunk %d: %w", start/p.chunkSize, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(entries[start].Name),
			Value: value,
			Time:  time.Now(),
		})
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("write messages: %w", err)
	}
	p.logger.Info("Catalog published",
		zap.Int("entries", len(entries)),
		zap.Int("messages", len(msgs)),
	)
	return len(msgs), nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
