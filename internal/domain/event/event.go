package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of date values in event data
const DateLayout = "2006-01-02"

// Event is a completed action leaving a workflow session.
// Data holds string values for text and choice fields and time.Time for dates.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	SessionID string         `json:"session_id"`
	ActionID  string         `json:"action_id"`
	MarkRef   string         `json:"mark_ref,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewActionCompleted creates a completion event. A nil data map is stored as empty.
func NewActionCompleted(sessionID, actionID, markRef string, data map[string]any) *Event {
	if data == nil {
		data = map[string]any{}
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      TypeActionCompleted,
		SessionID: sessionID,
		ActionID:  actionID,
		MarkRef:   markRef,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// DataTime retrieves a date value from the data
func (e *Event) DataTime(key string) (time.Time, bool) {
	t, ok := e.Data[key].(time.Time)
	return t, ok
}

// WireData returns the data as it travels outside the process, with dates
// formatted as DateLayout
func (e *Event) WireData() map[string]any {
	out := make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		if t, ok := e.DataTime(k); ok {
			out[k] = t.Format(DateLayout)
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the event with WireData in place of Data
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	p.Data = e.WireData()
	return json.Marshal(p)
}
