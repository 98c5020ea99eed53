package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Reservation lifecycle event types.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationPaid      = "reservation_paid"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationExpired   = "reservation_expired"
)

// ReservationEvent is the wire form of a reservation state transition.
type ReservationEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	FlightID    int64     `json:"flight_id"`
	Row         int       `json:"row"`
	Seat        string    `json:"seat"`
	HolderEmail string    `json:"holder_email"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
