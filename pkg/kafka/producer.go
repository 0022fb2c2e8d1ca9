package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes post lifecycle events
type Producer struct {
	client *kgo.Client
	logger *logrus.Logger
	source string
}

// NewProducer creates a Kafka producer for the given service
func NewProducer(brokers []string, source string, logger *logrus.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(source),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Producer{
		client: client,
		logger: logger,
		source: source,
	}, nil
}

// Close shuts down the underlying client
func (p *Producer) Close() error {
	p.client.Close()
	return nil
}

// Client exposes the underlying client for health checks
func (p *Producer) Client() *kgo.Client {
	return p.client
}

// PublishPostEvent produces a lifecycle event keyed by post ID, so all
// events for one post land on the same partition in order.
func (p *Producer) PublishPostEvent(ctx context.Context, evt PostEvent) error {
	value, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode post event: %w", err)
	}

	record := &kgo.Record{
		Topic: TopicPostLifecycle,
		Key:   []byte(evt.PostID),
		Value: value,
	}

	produceCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result := p.client.ProduceSync(produceCtx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce post event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_type": evt.Type,
		"post_id":    evt.PostID,
	}).Debug("Published post lifecycle event")

	return nil
}
