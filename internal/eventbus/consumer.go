package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/logger"

	"github.com/IBM/sarama"
)

// Dispatcher receives every DomainEvent consumed off Kafka. The realtime
// Hub registers itself as the Dispatcher so it can route facts into the
// room-based broadcast table (§4.5) without this package knowing anything
// about websockets.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev DomainEvent) error
}

// Consumer starts a sarama consumer group across the domain's topics and
// hands every decoded event to the registered Dispatcher.
type Consumer struct {
	group      sarama.ConsumerGroup
	dispatcher Dispatcher
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewConsumer builds a consumer group reading the booking/pricing/loyalty
// topics under one group ID, so the realtime Hub sees each fact exactly
// once across however many server instances are running.
func NewConsumer(cfg config.KafkaConfig, dispatcher Dispatcher, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{group: group, dispatcher: dispatcher, log: log, ctx: ctx, cancel: cancel}, nil
}

// Start runs the consumer group loop until the context is cancelled or
// Stop is called. Each worker re-joins the group on transient errors.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.ctx.Done():
				return
			default:
				handler := &groupHandler{consumer: c}
				if err := c.group.Consume(ctx, []string{topicBookings, topicPricing, topicLoyalty}, handler); err != nil {
					c.log.ErrorWithContext(ctx, "eventbus consumer group error", err, nil)
					time.Sleep(time.Second)
				}
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			c.log.ErrorWithContext(ctx, "eventbus consumer error", err, nil)
		}
	}()
}

func (c *Consumer) Stop() error {
	c.cancel()
	if c.group == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			var ev DomainEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				h.consumer.log.ErrorWithContext(session.Context(), "decode domain event failed", err, map[string]interface{}{"topic": msg.Topic})
				session.MarkMessage(msg, "")
				continue
			}

			if err := h.consumer.dispatcher.Dispatch(session.Context(), ev); err != nil {
				h.consumer.log.ErrorWithContext(session.Context(), "dispatch domain event failed", err, map[string]interface{}{"event_type": string(ev.Type)})
			}
			session.MarkMessage(msg, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
