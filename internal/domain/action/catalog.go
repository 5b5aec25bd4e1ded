package action

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAction is returned when an action ID is outside the catalog
	ErrUnknownAction = errors.New("unknown action")

	// ErrUnknownField is returned when a field name has no binding in the catalog
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownOptionSet is returned when a choice field refers to a missing option set
	ErrUnknownOptionSet = errors.New("unknown option set")

	// ErrNotChoice is returned when option lookups are made for a non-choice field
	ErrNotChoice = errors.New("field is not a choice field")
)

// DefaultSuggestionLimit caps how many search matches are surfaced at a time
const DefaultSuggestionLimit = 10

// Catalog is the read-only registry of actions, field bindings and option sets.
// It is safe for concurrent use because nothing mutates it after NewCatalog returns.
type Catalog struct {
	order   []ID
	actions map[ID]Definition
	fields  map[string]FieldSpec
	options map[string]OptionSet
}

// NewCatalog builds a catalog and checks that every required field is bound
// and every choice field points at a known option set.
func NewCatalog(defs []Definition, fields []FieldSpec, sets []OptionSet) (*Catalog, error) {
	c := &Catalog{
		actions: make(map[ID]Definition, len(defs)),
		fields:  make(map[string]FieldSpec, len(fields)),
		options: make(map[string]OptionSet, len(sets)),
	}

	for _, s := range sets {
		if s.Name == "" {
			return nil, fmt.Errorf("option set without a name")
		}
		c.options[s.Name] = s.clone()
	}

	for _, f := range fields {
		if !f.Kind.IsValid() {
			return nil, fmt.Errorf("field %s: invalid kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindSingleChoice {
			if _, ok := c.options[f.OptionSet]; !ok {
				return nil, fmt.Errorf("field %s: %w: %q", f.Name, ErrUnknownOptionSet, f.OptionSet)
			}
		}
		c.fields[f.Name] = f
	}

	for _, d := range defs {
		if _, dup := c.actions[d.ID]; dup {
			return nil, fmt.Errorf("duplicate action %s", d.ID)
		}
		if d.ID.IsPassThrough() && len(d.RequiredFields) > 0 {
			return nil, fmt.Errorf("action %s cannot require fields", d.ID)
		}
		for _, name := range d.RequiredFields {
			if _, ok := c.fields[name]; !ok {
				return nil, fmt.Errorf("action %s: %w: %s", d.ID, ErrUnknownField, name)
			}
		}
		c.actions[d.ID] = d.clone()
		c.order = append(c.order, d.ID)
	}

	return c, nil
}

// Actions returns all definitions in picker order
func (c *Catalog) Actions() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.actions[id].clone())
	}
	return out
}

// Definition returns the definition for an action
func (c *Catalog) Definition(id ID) (Definition, error) {
	d, ok := c.actions[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return d.clone(), nil
}

// Has reports whether the action is in the catalog
func (c *Catalog) Has(id ID) bool {
	_, ok := c.actions[id]
	return ok
}

// RequiredFields returns the ordered field names an action requires.
// The pass-through action yields an empty sequence.
func (c *Catalog) RequiredFields(id ID) ([]string, error) {
	d, ok := c.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return append([]string{}, d.RequiredFields...), nil
}

// FieldKind returns the semantic kind bound to a field name
func (c *Catalog) FieldKind(name string) (FieldKind, error) {
	f, err := c.Field(name)
	if err != nil {
		return "", err
	}
	return f.Kind, nil
}

// Field returns the full binding for a field name
func (c *Catalog) Field(name string) (FieldSpec, error) {
	f, ok := c.fields[name]
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// OptionsFor returns the option set bound to a choice field
func (c *Catalog) OptionsFor(name string) (OptionSet, error) {
	f, err := c.Field(name)
	if err != nil {
		return OptionSet{}, err
	}
	if f.Kind != KindSingleChoice {
		return OptionSet{}, fmt.Errorf("%w: %s is %s", ErrNotChoice, name, f.Kind)
	}
	return c.options[f.OptionSet].clone(), nil
}

// Search filters a set by case-insensitive substring match on each option's
// display text, returning at most limit matches in set order. A non-positive
// limit means no cap.
func Search(set OptionSet, query string, limit int, label func(key string) string) []Option {
	needle := strings.ToLower(query)
	matches := make([]Option, 0)
	for _, o := range set.Options {
		if limit > 0 && len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(o.Text(label)), needle) {
			matches = append(matches, o)
		}
	}
	return matches
}
