package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker polls the store and publishes claimed records as CloudEvents.
// A publish failure reschedules the record per the Backoff ladder; the
// record is marked sent only after the producer acks.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	interval := w.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	workerID := w.ID
	if workerID == "" {
		workerID = uuid.NewString()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOne(ctx, workerID); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drainOne(ctx context.Context, workerID string) error {
	doc, err := w.Store.Claim(ctx, workerID)
	if err != nil || doc == nil {
		return err
	}
	payload, headers, err := w.envelope(doc)
	if err != nil {
		// Unencodable payloads still retry: the record may have been
		// written by a newer deploy mid-rollout.
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return nil
	}
	return w.Store.MarkSent(ctx, doc.ID)
}

// envelope wraps the stored payload in a CloudEvents structure. The
// event type gets a ".v1" suffix so consumers can pin a schema.
func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	var data map[string]any
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}

	source := w.Source
	if source == "" {
		source = "app://holidayrentals"
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          source,
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}

	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor groups events by family: "booking.confirmed" lands on
// <prefix>booking.events.v1.
func (w *Worker) topicFor(name string) string {
	family := name
	if dot := strings.IndexRune(name, '.'); dot > 0 {
		family = name[:dot]
	}
	return w.TopicPrefix + family + ".events.v1"
}

func (w *Worker) nextRetry(attempts int) time.Time {
	ladder := w.Backoff
	if len(ladder) == 0 {
		return time.Now().Add(5 * time.Second)
	}
	if attempts >= len(ladder) {
		attempts = len(ladder) - 1
	}
	return time.Now().Add(ladder[attempts])
}
