// Package events publishes page changes and due reminders as JSON messages.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

// Event types.
const (
	TypeChange      = "record.changed"
	TypeReminderDue = "reminder.due"
)

// Event is the JSON message written for every published occurrence.
type Event struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Session  string           `json:"session"`
	Resource string           `json:"resource"`
	Action   resource.Action  `json:"action,omitempty"`
	RecordID int64            `json:"record_id"`
	Record   *resource.Record `json:"record,omitempty"`
	At       time.Time        `json:"at"`
}

// Key groups messages of the same record on one partition.
func (e Event) Key() string {
	return e.Resource + "/" + strconv.FormatInt(e.RecordID, 10)
}

// ChangeEvent wraps an acknowledged page change.
func ChangeEvent(session string, ch resource.Change) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     TypeChange,
		Session:  session,
		Resource: ch.Resource,
		Action:   ch.Action,
		RecordID: ch.RecordID,
		Record:   ch.Record,
		At:       ch.At,
	}
}

// DueEvent wraps a reminder that became due.
func DueEvent(session string, r resource.Record, at time.Time) Event {
	rec := r.Clone()
	return Event{
		ID:       uuid.NewString(),
		Type:     TypeReminderDue,
		Session:  session,
		Resource: "reminders",
		RecordID: r.ID,
		Record:   &rec,
		At:       at,
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events to one topic.
type Kafka struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewKafka creates a publisher for the given brokers and topic.
func NewKafka(brokers []string, topic string, logger zerolog.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafka(w, topic, logger)
}

func newKafka(w messageWriter, topic string, logger zerolog.Logger) *Kafka {
	return &Kafka{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "events").Str("topic", topic).Logger(),
	}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	k.logger.Debug().Str("event_id", e.ID).Str("key", e.Key()).Msg("event published")
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Observer returns a resource.Observer publishing every change of a
// session. Delivery failures are logged and never reach the page.
func Observer(p Publisher, session string, logger zerolog.Logger) resource.Observer {
	return func(ctx context.Context, ch resource.Change) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ChangeEvent(session, ch)); err != nil {
			logger.Warn().Err(err).
				Str("resource", ch.Resource).
				Int64("record_id", ch.RecordID).
				Msg("change event not delivered")
		}
	}
}
