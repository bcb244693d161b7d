package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"djbooks_back_end/internal/applog"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	TypeOrderPlaced     = "order.placed"
	TypePaymentRecorded = "payment.recorded"
)

// OrderEvent is the payload published on the order topic.
type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    int64           `json:"order_id"`
	RefCode    string          `json:"ref_code"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	ChargeID   string          `json:"charge_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return p, nil
}

// Publisher sends order events keyed by order id. A nil producer drops events
// after logging them.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, e OrderEvent) error {
	if p.producer == nil {
		applog.Debug(ctx, p.logger, "kafka disabled, event dropped", zap.String("type", e.Type), zap.String("ref_code", e.RefCode))
		return nil
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(e.Type)}}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(strconv.FormatInt(e.OrderID, 10)),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", e.Type, err)
	}

	applog.Info(ctx, p.logger, "event published",
		zap.String("topic", p.topic),
		zap.String("type", e.Type),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
