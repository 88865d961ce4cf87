package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/config"
)

const (
	adminDialTimeout = 10 * time.Second
	topicReadyWithin = 10 * time.Second
	topicPollEvery   = 500 * time.Millisecond
)

// catalogTopic is the topic layout the ingest consumer expects.
func catalogTopic(cfg config.Kafka) (kafkago.TopicConfig, error) {
	if len(cfg.Brokers) == 0 {
		return kafkago.TopicConfig{}, errors.New("no kafka brokers configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return kafkago.TopicConfig{}, errors.New("empty topic")
	}
	return kafkago.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     max(cfg.Partitions, 1),
		ReplicationFactor: max(cfg.Replication, 1),
	}, nil
}

// EnsureTopic makes sure the TLE catalog topic exists before the consumer
// joins its group. A missing topic is created on the controller and polled
// until every partition is listed.
func EnsureTopic(ctx context.Context, cfg config.Kafka, log *zap.Logger) error {
	want, err := catalogTopic(cfg)
	if err != nil {
		return err
	}

	dialer := &kafkago.Dialer{Timeout: adminDialTimeout}
	seed, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer seed.Close()

	if parts, err := seed.ReadPartitions(want.Topic); err == nil && len(parts) > 0 {
		log.Info("catalog topic already present", zap.String("topic", want.Topic), zap.Int("partitions", len(parts)))
		return nil
	}

	if err := createOnController(ctx, dialer, seed, want, log); err != nil {
		return err
	}
	return awaitPartitions(ctx, seed, want, log)
}

func createOnController(ctx context.Context, dialer *kafkago.Dialer, seed *kafkago.Conn, want kafkago.TopicConfig, log *zap.Logger) error {
	broker, err := seed.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	addr := net.JoinHostPort(broker.Host, strconv.Itoa(broker.Port))

	admin, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", addr, err)
	}
	defer admin.Close()

	log.Info("creating catalog topic",
		zap.String("topic", want.Topic),
		zap.Int("partitions", want.NumPartitions),
		zap.Int("replication", want.ReplicationFactor),
	)
	if err := admin.CreateTopics(want); err != nil && !errors.Is(err, kafkago.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", want.Topic, err)
	}
	return nil
}

// awaitPartitions polls metadata because topic creation is asynchronous on
// the broker side.
func awaitPartitions(ctx context.Context, conn *kafkago.Conn, want kafkago.TopicConfig, log *zap.Logger) error {
	giveUp := time.Now().Add(topicReadyWithin)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		parts, err := conn.ReadPartitions(want.Topic)
		if err == nil && len(parts) >= want.NumPartitions {
			log.Info("catalog topic ready", zap.String("topic", want.Topic), zap.Int("partitions", len(parts)))
			return nil
		}
		if time.Now().After(giveUp) {
			return fmt.Errorf("topic %s: %d/%d partitions visible after %s", want.Topic, len(parts), want.NumPartitions, topicReadyWithin)
		}
		sleepWithContext(ctx, topicPollEvery)
	}
}
