package event

// Type identifies the type of domain event
type Type string

const (
	// TypeActionCompleted is emitted once per successful submit or pass-through selection
	TypeActionCompleted Type = "action.completed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeActionCompleted:
		return true
	default:
		return false
	}
}
