package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ticketly/internal/logger"
)

// Producer streams order lifecycle events. One writer per topic, matching
// the topic-per-event-type layout the consumers expect.
type Producer struct {
	Reserved  *kafka.Writer
	Completed *kafka.Writer
	Released  *kafka.Writer
	Logger    *logger.Logger
}

func NewProducer(brokers []string, reservedTopic, completedTopic, releasedTopic string, log *logger.Logger) *Producer {
	writer := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{
		Reserved:  writer(reservedTopic),
		Completed: writer(completedTopic),
		Released:  writer(releasedTopic),
		Logger:    log,
	}
}

type orderReservedEvent struct {
	OrderID    string    `json:"order_id"`
	TicketIDs  []string  `json:"ticket_ids"`
	CustomerID string    `json:"customer_id"`
	ReservedAt time.Time `json:"reserved_at"`
}

type orderCompletedEvent struct {
	OrderID     string    `json:"order_id"`
	SoldCount   int       `json:"sold_count"`
	CompletedAt time.Time `json:"completed_at"`
}

type orderReleasedEvent struct {
	OrderID       string    `json:"order_id"`
	ReleasedCount int       `json:"released_count"`
	ReleasedAt    time.Time `json:"released_at"`
}

// PublishOrderReserved streams the reservation event to Kafka.
func (p *Producer) PublishOrderReserved(orderID string, ticketIDs []string, customerID string) error {
	return p.publish(p.Reserved, orderID, orderReservedEvent{
		OrderID:    orderID,
		TicketIDs:  ticketIDs,
		CustomerID: customerID,
		ReservedAt: time.Now().UTC(),
	})
}

// PublishOrderCompleted streams the completion event to Kafka.
func (p *Producer) PublishOrderCompleted(orderID string, soldCount int) error {
	return p.publish(p.Completed, orderID, orderCompletedEvent{
		OrderID:     orderID,
		SoldCount:   soldCount,
		CompletedAt: time.Now().UTC(),
	})
}

// PublishOrderReleased streams the release event to Kafka.
func (p *Producer) PublishOrderReleased(orderID string, releasedCount int) error {
	return p.publish(p.Released, orderID, orderReleasedEvent{
		OrderID:       orderID,
		ReleasedCount: releasedCount,
		ReleasedAt:    time.Now().UTC(),
	})
}

func (p *Producer) publish(w *kafka.Writer, key string, event any) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", w.Topic, string(msgBytes))

	return w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// Close shuts down all writers.
func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.Reserved, p.Completed, p.Released} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
