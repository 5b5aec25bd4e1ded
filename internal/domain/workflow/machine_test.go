package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type ctxKey string

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateSelecting, false},
		{StateFilling, false},
		{StateSubmitted, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"selecting", StateSelecting, true},
		{"cancelled", StateCancelled, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Step(t *testing.T) {
	tests := map[State]string{
		StateSelecting: "selecting",
		StateFilling:   "filling",
		StateSubmitted: "closed",
		StateCancelled: "closed",
	}
	for state, want := range tests {
		if got := state.Step(); got != want {
			t.Errorf("%s.Step() = %q, want %q", state, got, want)
		}
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerPassThrough.String(); got != "PASS_THROUGH" {
		t.Errorf("Trigger.String() = %v, want %v", got, "PASS_THROUGH")
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateSelecting)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	if config2 := builder.Configure(StateSelecting); config != config2 {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestBuilder_BuildIsolatesMachines(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSelecting).Permit(TriggerSelect, StateFilling)

	machine := builder.Build(StateSelecting)
	builder.Configure(StateSelecting).Permit(TriggerCancel, StateCancelled)

	if machine.CanFire(TriggerCancel) {
		t.Error("machine should not see transitions configured after Build()")
	}
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSelecting).
		Permit(TriggerSelect, StateFilling)

	machine := builder.Build(StateSelecting)

	if !machine.CanFire(TriggerSelect) {
		t.Error("CanFire() should return true for permitted trigger")
	}

	if err := machine.Fire(context.Background(), TriggerSelect); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}

	if machine.State() != StateFilling {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateFilling)
	}
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateFilling).
		PermitIf(TriggerSubmit, StateSubmitted, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StateFilling)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if err == nil {
		t.Fatal("Fire() should fail when guard fails")
	}

	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}

	if machine.State() != StateFilling {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateFilling, machine.State())
	}
}

func TestStateConfiguration_PermitIf_MultipleTransitions(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSelecting).
		PermitIf(TriggerSelect, StateSubmitted, func(ctx context.Context) bool {
			return ctx.Value(ctxKey("shortcut")).(bool)
		}).
		PermitIf(TriggerSelect, StateFilling, func(ctx context.Context) bool {
			return !ctx.Value(ctxKey("shortcut")).(bool)
		})

	machine1 := builder.Build(StateSelecting)
	ctx1 := context.WithValue(context.Background(), ctxKey("shortcut"), true)
	if err := machine1.Fire(ctx1, TriggerSelect); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine1.State() != StateSubmitted {
		t.Errorf("State after Fire() = %v, want %v", machine1.State(), StateSubmitted)
	}

	machine2 := builder.Build(StateSelecting)
	ctx2 := context.WithValue(context.Background(), ctxKey("shortcut"), false)
	if err := machine2.Fire(ctx2, TriggerSelect); err != nil {
		t.Errorf("Fire() failed: %v", err)
	}
	if machine2.State() != StateFilling {
		t.Errorf("State after Fire() = %v, want %v", machine2.State(), StateFilling)
	}
}

func TestStateConfiguration_PermitPanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	NewBuilder().Configure(StateSelecting).Permit(TriggerSelect, State("INVALID"))
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateSelecting).
		Permit(TriggerSelect, StateFilling)

	machine := builder.Build(StateSelecting)

	err := machine.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if machine.State() != StateSelecting {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateSelecting, machine.State())
	}
}

func TestStateMachine_Fire_UnconfiguredState(t *testing.T) {
	machine := NewBuilder().Build(StateCancelled)

	if err := machine.Fire(context.Background(), TriggerReset); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateFilling).
		Permit(TriggerSubmit, StateSubmitted).
		Permit(TriggerBack, StateSelecting).
		Permit(TriggerCancel, StateCancelled)

	got := builder.Build(StateFilling).PermittedTriggers()
	want := []Trigger{TriggerBack, TriggerCancel, TriggerSubmit}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PermittedTriggers() = %v, want %v", got, want)
	}

	if got := builder.Build(StateSelecting).PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, want empty", got)
	}
}

func TestStateMachine_OnTransition(t *testing.T) {
	type step struct {
		from, to State
		trigger  Trigger
	}
	var seen []step

	builder := NewBuilder()
	builder.Configure(StateSelecting).Permit(TriggerPassThrough, StateSubmitted)
	builder.Configure(StateSubmitted).Permit(TriggerReset, StateSelecting)
	builder.OnTransition(func(from, to State, trigger Trigger) {
		seen = append(seen, step{from, to, trigger})
	})

	machine := builder.Build(StateSelecting)
	ctx := context.Background()
	if err := machine.Fire(ctx, TriggerPassThrough); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if err := machine.Fire(ctx, TriggerReset); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	_ = machine.Fire(ctx, TriggerSubmit)

	want := []step{
		{StateSelecting, StateSubmitted, TriggerPassThrough},
		{StateSubmitted, StateSelecting, TriggerReset},
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("observed transitions = %v, want %v", seen, want)
	}
}
