package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Publisher publica los eventos del ledger en un topic de Kafka.
// La clave del mensaje es el product_id: los eventos de un producto quedan en la misma partición, en orden.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewConfig configuración del productor: confirmación de todas las réplicas e idempotencia.
func NewConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 5
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_8_0_0
	return cfg
}

// NewPublisher conecta con los brokers indicados.
func NewPublisher(brokers []string, topic, clientID string, log *logger.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig(clientID))
	if err != nil {
		return nil, fmt.Errorf("kafka: crear productor: %w", err)
	}
	return NewPublisherWithProducer(producer, topic, log), nil
}

// NewPublisherWithProducer usa un productor ya creado (tests, o configuración propia).
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, log: log.Named("kafka")}
}

// Publish serializa el evento a JSON y lo envía de forma síncrona.
func (p *Publisher) Publish(ctx context.Context, evt inventory.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(evt.ProductID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: evt.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(evt.Type)},
			{Key: []byte("event_id"), Value: []byte(evt.ID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: enviar %s: %w", evt.Type, err)
	}
	p.log.Debug().
		Str("event_type", evt.Type).
		Str("product_id", evt.ProductID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("evento publicado")
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
