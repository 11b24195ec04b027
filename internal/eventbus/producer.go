package eventbus

import (
	"context"
	"fmt"
	"time"

	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer is the contract bookings.EventPublisher and loyalty.EventPublisher
// are each satisfied against, one method per domain.
type Producer interface {
	PublishBookingChanged(ctx context.Context, hotelID, roomID, bookingID uuid.UUID, kind string) error
	PublishPriceChanged(ctx context.Context, hotelID, roomID uuid.UUID, roomType string, price float64, currency string) error
	PublishLoyaltyEvent(ctx context.Context, eventType string, userID uuid.UUID, payload map[string]interface{}) error
	Close() error
	HealthCheck(ctx context.Context) error
}

const (
	topicBookings = "hotelcore.bookings"
	topicPricing  = "hotelcore.pricing"
	topicLoyalty  = "hotelcore.loyalty"
)

// KafkaProducer publishes domain events to per-domain Kafka topics.
type KafkaProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaProducer builds a sarama sync producer from the resolved Kafka
// config, configured for idempotent, hash-partitioned, ack-all writes.
func NewKafkaProducer(cfg config.KafkaConfig, log *logger.Logger) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaProducer{producer: producer, log: log}, nil
}

func (p *KafkaProducer) publish(topic string, ev DomainEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal domain event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(ev.PartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Timestamp: ev.CreatedAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(ev.ID.String())},
			{Key: []byte("event_type"), Value: []byte(ev.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s to kafka: %w", ev.Type, err)
	}

	p.log.Info(fmt.Sprintf("published %s to %s partition=%d offset=%d", ev.Type, topic, partition, offset))
	return nil
}

// PublishBookingChanged satisfies bookings.EventPublisher.
func (p *KafkaProducer) PublishBookingChanged(ctx context.Context, hotelID, roomID, bookingID uuid.UUID, kind string) error {
	eventType := EventBookingCreated
	if kind == "CANCELLED" {
		eventType = EventBookingCancelled
	}
	ev := newEvent(eventType, &hotelID, nil, map[string]interface{}{
		"roomId":    roomID.String(),
		"bookingId": bookingID.String(),
		"kind":      kind,
	})
	return p.publish(topicBookings, ev)
}

// PublishPriceChanged carries a recomputed price to the realtime price-watch
// dispatcher (§4.6).
func (p *KafkaProducer) PublishPriceChanged(ctx context.Context, hotelID, roomID uuid.UUID, roomType string, price float64, currency string) error {
	ev := newEvent(EventPriceChanged, &hotelID, nil, map[string]interface{}{
		"roomId":   roomID.String(),
		"roomType": roomType,
		"price":    price,
		"currency": currency,
	})
	return p.publish(topicPricing, ev)
}

// PublishLoyaltyEvent satisfies loyalty.EventPublisher.
func (p *KafkaProducer) PublishLoyaltyEvent(ctx context.Context, eventType string, userID uuid.UUID, payload map[string]interface{}) error {
	ev := newEvent(EventLoyaltyChanged, nil, &userID, payload)
	ev.Payload["eventType"] = eventType
	return p.publish(topicLoyalty, ev)
}

func (p *KafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	if p.producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	return nil
}
