package workflow

// Trigger represents an operator action that can move a session between states
type Trigger string

const (
	TriggerSelect      Trigger = "SELECT"
	TriggerPassThrough Trigger = "PASS_THROUGH"
	TriggerBack        Trigger = "BACK"
	TriggerSubmit      Trigger = "SUBMIT"
	TriggerCancel      Trigger = "CANCEL"
	TriggerReset       Trigger = "RESET"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
