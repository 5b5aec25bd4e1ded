package session

import (
	domainwf "github.com/garyjia/mark-console/internal/domain/workflow"
)

// buildStateMachine creates a state machine configured for one action-entry dialog.
// complete guards the submit transition; observe sees every transition taken.
func buildStateMachine(complete domainwf.GuardFunc, observe domainwf.TransitionFunc) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// SELECTING state transitions
	builder.Configure(domainwf.StateSelecting).
		Permit(domainwf.TriggerSelect, domainwf.StateFilling).
		Permit(domainwf.TriggerPassThrough, domainwf.StateSubmitted).
		Permit(domainwf.TriggerCancel, domainwf.StateCancelled)

	// FILLING state transitions
	builder.Configure(domainwf.StateFilling).
		PermitIf(domainwf.TriggerSubmit, domainwf.StateSubmitted, complete).
		Permit(domainwf.TriggerBack, domainwf.StateSelecting).
		Permit(domainwf.TriggerCancel, domainwf.StateCancelled)

	// SUBMITTED and CANCELLED only lead back to a fresh selection
	builder.Configure(domainwf.StateSubmitted).
		Permit(domainwf.TriggerReset, domainwf.StateSelecting)
	builder.Configure(domainwf.StateCancelled).
		Permit(domainwf.TriggerReset, domainwf.StateSelecting)

	builder.OnTransition(observe)

	return builder.Build(domainwf.StateSelecting)
}
