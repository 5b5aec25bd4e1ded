package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/mark-console/internal/domain/action"
)

// DateLayout is the wire format for date values
const DateLayout = "2006-01-02"

var (
	// ErrKindMismatch is returned when a value's kind differs from the field's kind
	ErrKindMismatch = errors.New("value kind does not match field kind")

	// ErrOptionNotAllowed is returned when a choice value is outside the field's option set
	ErrOptionNotAllowed = errors.New("option not allowed")

	// ErrInvalidDate is returned when date text is not in DateLayout
	ErrInvalidDate = errors.New("invalid date")
)

// Value is a field value. Each implementation carries exactly one field kind,
// so a date field can never hold free text.
type Value interface {
	Kind() action.FieldKind
	IsEmpty() bool
	// Data is the representation placed in completion events: string or time.Time.
	Data() any
	String() string
}

// TextValue is a short free-text value
type TextValue string

func (v TextValue) Kind() action.FieldKind { return action.KindShortText }
func (v TextValue) IsEmpty() bool          { return v == "" }
func (v TextValue) Data() any              { return string(v) }
func (v TextValue) String() string         { return string(v) }

// ChoiceValue is the value of one selected option
type ChoiceValue string

func (v ChoiceValue) Kind() action.FieldKind { return action.KindSingleChoice }
func (v ChoiceValue) IsEmpty() bool          { return v == "" }
func (v ChoiceValue) Data() any              { return string(v) }
func (v ChoiceValue) String() string         { return string(v) }

// DateValue is a calendar date. The zero value means unset.
type DateValue struct {
	t time.Time
}

// NewDate returns a date value truncated to the calendar day
func NewDate(t time.Time) DateValue {
	if t.IsZero() {
		return DateValue{}
	}
	y, m, d := t.Date()
	return DateValue{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (v DateValue) Kind() action.FieldKind { return action.KindDate }
func (v DateValue) IsEmpty() bool          { return v.t.IsZero() }

// Data returns nil for an unset date
func (v DateValue) Data() any {
	if v.IsEmpty() {
		return nil
	}
	return v.t
}

func (v DateValue) String() string {
	if v.IsEmpty() {
		return ""
	}
	return v.t.Format(DateLayout)
}

// Time returns the date and whether it is set
func (v DateValue) Time() (time.Time, bool) {
	return v.t, !v.t.IsZero()
}

// Empty returns the unset value for a field kind
func Empty(kind action.FieldKind) Value {
	switch kind {
	case action.KindSingleChoice:
		return ChoiceValue("")
	case action.KindDate:
		return DateValue{}
	default:
		return TextValue("")
	}
}

// Parse converts wire text into a value of the given kind.
// Empty text yields the kind's unset value.
func Parse(kind action.FieldKind, raw string) (Value, error) {
	switch kind {
	case action.KindShortText:
		return TextValue(raw), nil
	case action.KindSingleChoice:
		return ChoiceValue(raw), nil
	case action.KindDate:
		if raw == "" {
			return DateValue{}, nil
		}
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidDate, raw, err)
		}
		return NewDate(t), nil
	default:
		return nil, fmt.Errorf("%w: unsupported field kind %q", ErrKindMismatch, kind)
	}
}

// Check verifies a value against a field binding. Choice values must be in
// the option set; the empty choice is allowed so a selection can be cleared.
func Check(spec action.FieldSpec, set action.OptionSet, v Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil value for %s", ErrKindMismatch, spec.Name)
	}
	if v.Kind() != spec.Kind {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, spec.Name, spec.Kind, v.Kind())
	}
	if spec.Kind == action.KindSingleChoice && !v.IsEmpty() && !set.Contains(v.String()) {
		return fmt.Errorf("%w: %q for %s", ErrOptionNotAllowed, v.String(), spec.Name)
	}
	return nil
}

// Values maps field names to their current values
type Values map[string]Value

// Clone returns a shallow copy; values themselves are immutable
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Data returns the submitted representation of every set value
func (vs Values) Data() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		if v == nil || v.IsEmpty() {
			continue
		}
		out[k] = v.Data()
	}
	return out
}
