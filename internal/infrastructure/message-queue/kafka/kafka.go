package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alimikegami/healthcare-microservices/users-service/config"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const defaultMaxRetries = 3

var KafkaConn *kafka.Conn

func CreateKafkaProducer(config *config.Config) *kafka.Conn {
	conn, err := kafka.DialLeader(context.Background(), "tcp", config.KafkaConfig.BrokerAddress, config.KafkaConfig.BrokerTopic, config.KafkaConfig.BrokerPartition)
	if err != nil {
		panic(err)
	}

	KafkaConn = conn
	return KafkaConn
}

// MessageWriter is satisfied by *kafka.Conn.
type MessageWriter interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}

// EventPublisher writes events to the broker. Publishing never fails the
// caller: after the last retry the event is logged and dropped.
type EventPublisher struct {
	writer     MessageWriter
	maxRetries int
	backoff    time.Duration
}

func CreateEventPublisher(writer MessageWriter) *EventPublisher {
	return &EventPublisher{
		writer:     writer,
		maxRetries: defaultMaxRetries,
		backoff:    time.Second,
	}
}

func (p *EventPublisher) WithBackoff(backoff time.Duration) *EventPublisher {
	p.backoff = backoff
	return p
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) {
	kafkaMsg := dto.KafkaMessage{
		ID:        ulid.Make().String(),
		EventType: eventType,
		Data:      data,
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Str("event_type", eventType).Msg("failed to marshal event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonMsg,
	}

	for i := 0; i < p.maxRetries; i++ {
		_, err = p.writer.WriteMessages(msg)
		if err == nil {
			log.Ctx(ctx).Info().Str("event_type", eventType).Str("event_id", kafkaMsg.ID).Msg("event published")
			return
		}

		log.Ctx(ctx).Warn().Err(err).Str("component", "Publish").Msgf("failed to write kafka message (attempt %d/%d)", i+1, p.maxRetries)
		if i < p.maxRetries-1 {
			time.Sleep(p.backoff * time.Duration(i+1))
		}
	}

	log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Str("event_type", eventType).Msg("dropping event after retries")
}
