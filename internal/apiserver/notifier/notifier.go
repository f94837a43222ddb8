package notifier

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a realtime fanout payload. Record carries the affected row;
// subscribers treat it as cache invalidation and re-query the store.
type Event struct {
	Event     string          `json:"event"` // INSERT, UPDATE, DELETE
	Table     string          `json:"table"`
	Record    json.RawMessage `json:"record,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Notifier fans out change events to subscribers. Delivery is
// at-least-once with no ordering guarantee across tables.
type Notifier interface {
	// Publish sends an event to all current subscribers
	Publish(ctx context.Context, event *Event) error

	// Subscribe returns a channel that receives events until ctx is done
	Subscribe(ctx context.Context) (<-chan *Event, error)
}

// NewEvent builds an event for a changed row, marshaling the record best
// effort. A row that fails to marshal still produces a notification.
func NewEvent(kind, table string, record any) *Event {
	event := &Event{Event: kind, Table: table, Timestamp: time.Now()}
	if record != nil {
		if data, err := json.Marshal(record); err == nil {
			event.Record = data
		}
	}
	return event
}
