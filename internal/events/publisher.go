// Package events publishes trip status changes to RabbitMQ for the ops
// dashboard. The queue is an optional side channel: the portal runs without
// it, and publish failures are logged and swallowed.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/models"
)

const (
	queueName      = "trip-status-events"
	publishTimeout = 10 * time.Second
	maxRetries     = 5
)

// StatusEvent is the JSON payload published per completed transition.
type StatusEvent struct {
	TripID       string            `json:"trip_id"`
	GuestID      string            `json:"guest_id"`
	EventID      string            `json:"event_id"`
	DriverID     string            `json:"driver_id"`
	Status       models.TripStatus `json:"status"`
	Reason       string            `json:"reason,omitempty"`
	DelayMinutes int               `json:"delay_minutes,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// Publisher owns the RabbitMQ connection for status events.
type Publisher struct {
	conn *amqp.Connection
	log  *slog.Logger
}

// Connect dials RabbitMQ with backoff. It gives up after maxRetries
// attempts so a missing broker delays startup instead of blocking it.
func Connect(amqpURL string, log *slog.Logger) (*Publisher, error) {
	var conn *amqp.Connection
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err = amqp.Dial(amqpURL)
		if err == nil {
			log.Info("connected to RabbitMQ")
			return &Publisher{conn: conn, log: log}, nil
		}

		log.Info("RabbitMQ not yet ready, backing off", "attempt", attempt)
		if attempt < maxRetries {
			time.Sleep(time.Duration(math.Pow(float64(attempt), 2)) * time.Second)
		}
	}

	return nil, err
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}

// Publish sends one status event. It never reports failure to the caller;
// the event channel must not affect the outcome of the transition.
func (p *Publisher) Publish(ctx context.Context, change models.StatusChange) {
	if p == nil || p.conn == nil {
		return
	}

	event := StatusEvent{
		TripID:       change.Trip.ID,
		GuestID:      change.Trip.GuestID,
		EventID:      change.Trip.EventID,
		DriverID:     change.Trip.DriverID,
		Status:       change.Status,
		Reason:       change.Reason,
		DelayMinutes: change.DelayMinutes,
		OccurredAt:   time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal status event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch, err := p.conn.Channel()
	if err != nil {
		p.log.Warn("failed to open RabbitMQ channel", "error", err)
		return
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn("failed to declare status event queue", "error", err)
		return
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		p.log.Warn("failed to publish status event", "trip_id", change.Trip.ID, "error", err)
		return
	}

	p.log.Debug("published status event", "trip_id", change.Trip.ID, "status", change.Status)
}
