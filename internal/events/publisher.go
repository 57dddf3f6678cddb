package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const RoutingSubmissionCompleted = "submission.completed"

type SubmissionCompleted struct {
	SubmissionID  uint      `json:"submission_id"`
	UserID        uint      `json:"user_id"`
	QuizID        uint      `json:"quiz_id"`
	AttemptNumber int       `json:"attempt_number"`
	Score         int       `json:"score"`
	TotalMarks    int       `json:"total_marks"`
	Percentage    float64   `json:"percentage"`
	CompletedAt   time.Time `json:"completed_at"`
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher sends domain events to a topic exchange. With an empty URL it is
// disabled and publishing is a no-op.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if url == "" {
		log.Println("events: RABBITMQ_URL not set, event publishing disabled")
		return &Publisher{exchange: exchange}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	log.Printf("events: publishing to exchange %s", exchange)
	return &Publisher{conn: conn, channel: ch, exchange: exchange, enabled: true}, nil
}

func (p *Publisher) Enabled() bool {
	return p.enabled
}

func (p *Publisher) PublishSubmissionCompleted(ctx context.Context, e SubmissionCompleted) error {
	return p.publish(ctx, RoutingSubmissionCompleted, e)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	if !p.enabled {
		return nil
	}

	body, err := json.Marshal(envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
