package workflow

// State is a step of an action-entry session
type State string

const (
	StateSelecting State = "SELECTING"
	StateFilling   State = "FILLING"
	StateSubmitted State = "SUBMITTED"
	StateCancelled State = "CANCELLED"
)

var validStates = map[State]bool{
	StateSelecting: true,
	StateFilling:   true,
	StateSubmitted: true,
	StateCancelled: true,
}

// Submitted and cancelled sessions only ever reset back to selecting.
var terminalStates = map[State]bool{
	StateSubmitted: true,
	StateCancelled: true,
}

// IsTerminal returns true if the session has ended and must be reset
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known session state
func (s State) IsValid() bool {
	return validStates[s]
}

// Step is the operator-facing name of the state
func (s State) Step() string {
	switch s {
	case StateFilling:
		return "filling"
	case StateSelecting:
		return "selecting"
	default:
		return "closed"
	}
}
