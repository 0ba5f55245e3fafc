package queue

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog"
)

// Publisher delivers events to the message broker. Publish waits for broker
// acknowledgement; PublishAsync is fire-and-forget and reports failures only
// through the log.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event)
	Close() error
}

// KafkaPublisher implements Publisher on a confluent-kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   zerolog.Logger
}

// NewKafkaPublisher creates a producer connected to the given brokers.
func NewKafkaPublisher(brokers string, logger zerolog.Logger) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: p,
		logger:   logger,
	}

	go kp.deliveryReportHandler()

	return kp, nil
}

// deliveryReportHandler logs failures for fire-and-forget produces.
func (kp *KafkaPublisher) deliveryReportHandler() {
	for e := range kp.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			kp.logger.Error().
				Err(m.TopicPartition.Error).
				Str("topic", *m.TopicPartition.Topic).
				Msg("async event delivery failed")
		}
	}
}

func (kp *KafkaPublisher) message(event Event) (*kafka.Message, error) {
	data, err := event.MarshalPayload()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := event.Topic()
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Value: data,
	}
	if key := event.Key(); key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}

// Publish produces the event and waits for the broker's delivery report.
func (kp *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kp.message(event)
	if err != nil {
		return err
	}

	deliveryCh := make(chan kafka.Event, 1)
	if err := kp.producer.Produce(msg, deliveryCh); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", event.Topic(), err)
	}

	select {
	case e := <-deliveryCh:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event for %s: %v", event.Topic(), e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery to %s failed: %w", event.Topic(), m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAsync produces the event without waiting for delivery. Failures
// surface through the delivery report handler's log only.
func (kp *KafkaPublisher) PublishAsync(ctx context.Context, event Event) {
	msg, err := kp.message(event)
	if err != nil {
		kp.logger.Error().Err(err).Str("topic", event.Topic()).Msg("failed to build async event")
		return
	}

	if err := kp.producer.Produce(msg, nil); err != nil {
		kp.logger.Error().Err(err).Str("topic", event.Topic()).Msg("failed to produce async event")
	}
}

// Close flushes pending messages and shuts the producer down.
func (kp *KafkaPublisher) Close() error {
	kp.producer.Flush(5000)
	kp.producer.Close()
	return nil
}
