package entity

import "time"

// ActionRecord is a journal row for one completed action
type ActionRecord struct {
	ID          int64     `json:"id"`
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	ActionID    string    `json:"action_id"`
	MarkRef     string    `json:"mark_ref,omitempty"`
	Data        string    `json:"data"` // JSON object of submitted field values
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}
