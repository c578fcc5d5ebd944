package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EventTypeHeader carries the event topic on every Kafka record.
const EventTypeHeader = "event-type"

// producer is the part of *kgo.Client the publisher uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher writes every event to a single Kafka topic. The event topic
// is used as the record key and copied to the event-type header.
type KafkaPublisher struct {
	client producer
	topic  string
}

// NewKafkaPublisher connects to brokers and makes sure topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, opts ...kgo.Opt) (*KafkaPublisher, error) {
	defaults := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("idres"),
	}
	client, err := kgo.NewClient(append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	if err := ensureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, topic string) error {
	resp, err := adm.CreateTopics(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("creating topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("creating topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event any) error {
	rec, err := newRecord(p.topic, topic, event)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}

func newRecord(kafkaTopic, eventTopic string, event any) (*kgo.Record, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}
	return &kgo.Record{
		Topic:   kafkaTopic,
		Key:     []byte(eventTopic),
		Value:   data,
		Headers: []kgo.RecordHeader{{Key: EventTypeHeader, Value: []byte(eventTopic)}},
	}, nil
}
