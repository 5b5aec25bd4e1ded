package action

// FieldKind is the semantic type of a form field
type FieldKind string

const (
	KindShortText    FieldKind = "shortText"
	KindSingleChoice FieldKind = "singleChoice"
	KindDate         FieldKind = "date"
)

// String returns the string representation of the field kind
func (k FieldKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one of the supported field kinds
func (k FieldKind) IsValid() bool {
	switch k {
	case KindShortText, KindSingleChoice, KindDate:
		return true
	default:
		return false
	}
}

// FieldSpec binds a field name to its kind and, for choices, to an option set
type FieldSpec struct {
	Name           string    `json:"name" yaml:"name"`
	LabelKey       string    `json:"label_key" yaml:"label_key"`
	Kind           FieldKind `json:"kind" yaml:"kind"`
	OptionSet      string    `json:"option_set,omitempty" yaml:"option_set,omitempty"`
	PlaceholderKey string    `json:"placeholder_key,omitempty" yaml:"placeholder_key,omitempty"`
}

// Option is one selectable value of a choice field.
// LabelKey is empty for options whose value is already display text.
type Option struct {
	Value    string `json:"value" yaml:"value"`
	LabelKey string `json:"label_key,omitempty" yaml:"label_key,omitempty"`
}

// Text returns the option's display text: its resolved label, or the value
// itself when the option has no label key
func (o Option) Text(label func(key string) string) string {
	if o.LabelKey != "" && label != nil {
		return label(o.LabelKey)
	}
	return o.Value
}

// OptionSet is a named, ordered list of options.
// Searchable sets are too large for a dropdown and are offered through type-ahead instead.
type OptionSet struct {
	Name       string   `json:"name" yaml:"name"`
	Searchable bool     `json:"searchable" yaml:"searchable"`
	Options    []Option `json:"options" yaml:"options"`
}

// Contains reports whether value is one of the set's option values
func (s OptionSet) Contains(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func (s OptionSet) clone() OptionSet {
	s.Options = append([]Option(nil), s.Options...)
	return s
}
