package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"stayloom/internal/domain/shared/events"
)

// EventRecord is a serialized domain event awaiting publication.
type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox stores event records inside the current unit of work so that events
// commit or roll back together with state changes.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns domain events into wire payloads.
type EventEncoder interface {
	Encode(e events.DomainEvent) ([]byte, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(e events.DomainEvent) ([]byte, error) {
	return json.Marshal(e)
}

// RecordDomainEvents encodes and stores every pending event.
func RecordDomainEvents(ctx context.Context, ob Outbox, encoder EventEncoder, evts []events.DomainEvent) error {
	for _, e := range evts {
		payload, err := encoder.Encode(e)
		if err != nil {
			return err
		}
		record := EventRecord{
			ID:         uuid.NewString(),
			Name:       e.EventName(),
			Aggregate:  e.AggregateID(),
			Payload:    payload,
			OccurredAt: e.OccurredAt(),
		}
		if err := ob.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
