package form

import (
	"fmt"

	"github.com/garyjia/mark-console/internal/domain/action"
)

// DisplayDateLayout is the short date format shown to operators
const DisplayDateLayout = "02.01.2006"

// LabelFunc resolves a symbolic key to display text
type LabelFunc func(key string) string

// Input names the affordance a field is rendered with
type Input string

const (
	InputText   Input = "text"
	InputSelect Input = "select"
	InputSearch Input = "search"
	InputDate   Input = "date"
)

// Choice is one option as shown to the operator
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Field is one rendered form field
type Field struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Kind        action.FieldKind `json:"kind"`
	Input       Input            `json:"input"`
	Value       string           `json:"value"`
	Display     string           `json:"display,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Options     []Choice         `json:"options,omitempty"`
	SearchText  string           `json:"search_text,omitempty"`
	Suggestions []Choice         `json:"suggestions,omitempty"`
	Invalid     bool             `json:"invalid"`
	Error       string           `json:"error,omitempty"`
}

// State is the part of a workflow session the renderer reads
type State struct {
	Action action.ID
	Values Values
	Errors map[string]bool
	Search map[string]string
}

// Renderer turns a catalog schema plus session state into concrete fields
type Renderer struct {
	catalog *action.Catalog
	limit   int
}

// RendererOption configures the renderer
type RendererOption func(*Renderer)

// WithSuggestionLimit caps how many search suggestions are surfaced
func WithSuggestionLimit(n int) RendererOption {
	return func(r *Renderer) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewRenderer creates a renderer over a catalog
func NewRenderer(catalog *action.Catalog, opts ...RendererOption) *Renderer {
	r := &Renderer{catalog: catalog, limit: action.DefaultSuggestionLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SuggestionLimit returns the configured suggestion cap
func (r *Renderer) SuggestionLimit() int {
	return r.limit
}

// Render produces the action's fields in required order
func (r *Renderer) Render(st State, label LabelFunc) ([]Field, error) {
	required, err := r.catalog.RequiredFields(st.Action)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, len(required))
	for _, name := range required {
		f, err := r.renderField(name, st, label)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Suggestions returns search matches for a searchable field, matched against
// each option's labelled text. Empty text offers nothing.
func (r *Renderer) Suggestions(field, text string, label LabelFunc) ([]action.Option, error) {
	set, err := r.catalog.OptionsFor(field)
	if err != nil {
		return nil, err
	}
	if !set.Searchable {
		return nil, fmt.Errorf("%w: %s is not searchable", action.ErrNotChoice, field)
	}
	if text == "" {
		return nil, nil
	}
	return action.Search(set, text, r.limit, label), nil
}

func (r *Renderer) renderField(name string, st State, label LabelFunc) (Field, error) {
	spec, err := r.catalog.Field(name)
	if err != nil {
		return Field{}, err
	}

	v, ok := st.Values[name]
	if !ok || v == nil {
		v = Empty(spec.Kind)
	}

	f := Field{
		Name:    name,
		Label:   label(spec.LabelKey) + " *",
		Kind:    spec.Kind,
		Value:   v.String(),
		Invalid: st.Errors[name],
	}
	if spec.PlaceholderKey != "" {
		f.Placeholder = label(spec.PlaceholderKey)
	}
	if f.Invalid {
		f.Error = label("required")
	}

	switch spec.Kind {
	case action.KindShortText:
		f.Input = InputText
		f.Display = f.Value

	case action.KindDate:
		f.Input = InputDate
		if d, ok := v.(DateValue); ok {
			if t, set := d.Time(); set {
				f.Display = t.Format(DisplayDateLayout)
			}
		}

	case action.KindSingleChoice:
		set, err := r.catalog.OptionsFor(name)
		if err != nil {
			return Field{}, err
		}
		if set.Searchable {
			f.Input = InputSearch
			f.Display = f.Value
			f.SearchText = st.Search[name]
			matches, err := r.Suggestions(name, f.SearchText, label)
			if err != nil {
				return Field{}, err
			}
			f.Suggestions = toChoices(matches, f.Value, label)
		} else {
			f.Input = InputSelect
			f.Options = toChoices(set.Options, f.Value, label)
			for _, c := range f.Options {
				if c.Selected {
					f.Display = c.Label
				}
			}
		}
	}

	return f, nil
}

func toChoices(opts []action.Option, selected string, label LabelFunc) []Choice {
	out := make([]Choice, 0, len(opts))
	for _, o := range opts {
		out = append(out, Choice{Value: o.Value, Label: o.Text(label), Selected: selected != "" && o.Value == selected})
	}
	return out
}
