package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerClient is the part of *kgo.Client the publisher needs.
type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher produces OrderPlacedV1 records keyed by order ID.
type KafkaPublisher struct {
	cl    ProducerClient
	topic string
	now   func() time.Time
}

// NewKafkaClient connects a producer client to the seed brokers.
func NewKafkaClient(seedBrokers []string, topic string) (*kgo.Client, error) {
	if len(seedBrokers) == 0 {
		return nil, errors.New("no kafka seed brokers configured")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(seedBrokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return cl, nil
}

func NewKafkaPublisher(cl ProducerClient, topic string) *KafkaPublisher {
	return &KafkaPublisher{cl: cl, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	ev, err := orderPlacedFromDomain(order, p.now())
	if err != nil {
		return fmt.Errorf("build order event: %w", err)
	}
	b, err := EncodeOrderPlacedV1(ev)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	r := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(order.ID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("OrderPlaced")},
			{Key: "schema_version", Value: []byte("1")},
		},
	}
	if err := p.cl.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("produce order event: %w", err)
	}
	logger.Debug("order event published", logger.Fields{"order_id": order.ID, "event_id": ev.EventID})
	return nil
}

func (p *KafkaPublisher) Close() {
	logger.Info("closing order event producer...")
	p.cl.Close()
}
