package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafka_PublishWritesJSON(t *testing.T) {
	w := &fakeWriter{}
	k := newKafka(w, "medcontrol.events", zerolog.Nop())

	rec := resource.NewRecord(7, map[string]any{"name": "Ana"})
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := ChangeEvent("sess-1", resource.Change{
		Resource: "patients", Action: resource.Created, RecordID: 7, Record: &rec, At: at,
	})
	if err := k.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "patients/7" {
		t.Errorf("key = %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != TypeChange {
		t.Errorf("headers = %+v", msg.Headers)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["session"] != "sess-1" || decoded["action"] != "created" {
		t.Errorf("unexpected payload: %s", msg.Value)
	}
	record, _ := decoded["record"].(map[string]any)
	if record["name"] != "Ana" || record["id"] != float64(7) {
		t.Errorf("unexpected record payload: %v", record)
	}

	if err := k.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed=%v", err, w.closed)
	}
}

func TestKafka_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	k := newKafka(w, "t", zerolog.Nop())
	if err := k.Publish(context.Background(), DueEvent("s", resource.NewRecord(1, nil), time.Now())); err == nil {
		t.Error("expected error")
	}
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestObserver_PublishesChanges(t *testing.T) {
	p := &recordingPublisher{}
	obs := Observer(p, "sess-2", zerolog.Nop())
	obs(context.Background(), resource.Change{Resource: "exams", Action: resource.Deleted, RecordID: 3})

	if len(p.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(p.events))
	}
	e := p.events[0]
	if e.Type != TypeChange || e.Session != "sess-2" || e.Action != resource.Deleted || e.RecordID != 3 {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.ID == "" {
		t.Error("event id not set")
	}
}

func TestObserver_SwallowsErrors(t *testing.T) {
	p := &recordingPublisher{err: errors.New("nope")}
	obs := Observer(p, "s", zerolog.Nop())
	obs(context.Background(), resource.Change{Resource: "exams"})
	if len(p.events) != 1 {
		t.Error("publish not attempted")
	}
}

func TestDueEvent(t *testing.T) {
	e := DueEvent("s", resource.NewRecord(4, map[string]any{"title": "Remédio"}), time.Now())
	if e.Type != TypeReminderDue || e.Resource != "reminders" || e.Key() != "reminders/4" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Event{}); err != nil {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}
