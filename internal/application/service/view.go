package service

import (
	"github.com/garyjia/mark-console/internal/application/session"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/form"
)

// ActionChoice is one entry of the action picker
type ActionChoice struct {
	ID    action.ID `json:"id"`
	Label string    `json:"label"`
}

// Buttons are the dialog footer labels
type Buttons struct {
	Cancel   string `json:"cancel"`
	Continue string `json:"continue"`
}

// View is everything a host needs to draw the dialog
type View struct {
	ID       string            `json:"id"`
	MarkRef  string            `json:"mark_ref,omitempty"`
	Language string            `json:"language"`
	Open     bool              `json:"open"`
	Step     string            `json:"step"`
	Title    string            `json:"title"`
	Action   action.ID         `json:"action,omitempty"`
	Actions  []ActionChoice    `json:"actions,omitempty"`
	Fields   []form.Field      `json:"fields,omitempty"`
	Values   map[string]string `json:"values"`
	Errors   map[string]bool   `json:"errors"`
	Buttons  *Buttons          `json:"buttons,omitempty"`
}

// CatalogField describes one field binding
type CatalogField struct {
	Name        string           `json:"name"`
	Kind        action.FieldKind `json:"kind"`
	Label       string           `json:"label"`
	OptionSet   string           `json:"option_set,omitempty"`
	Searchable  bool             `json:"searchable,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
}

// CatalogAction describes one action and its required fields in order
type CatalogAction struct {
	ID       action.ID      `json:"id"`
	LabelKey string         `json:"label_key"`
	Label    string         `json:"label"`
	Fields   []CatalogField `json:"fields"`
}

func buildView(s *session.Session, label func(string) string, actions []action.Definition) (*View, error) {
	snap := s.Snapshot()

	v := &View{
		ID:       snap.ID,
		MarkRef:  snap.MarkRef,
		Language: s.Language(),
		Open:     snap.Open,
		Step:     snap.Step,
		Title:    label(s.Title()),
		Action:   snap.Action,
		Values:   make(map[string]string, len(snap.Values)),
		Errors:   snap.Errors,
	}
	for name, val := range snap.Values {
		v.Values[name] = val.String()
	}

	if !snap.Open {
		return v, nil
	}

	if snap.Action == "" {
		v.Actions = make([]ActionChoice, len(actions))
		for i, def := range actions {
			v.Actions[i] = ActionChoice{ID: def.ID, Label: label(def.LabelKey)}
		}
		return v, nil
	}

	fields, err := s.Fields(label)
	if err != nil {
		return nil, err
	}
	v.Fields = fields
	v.Buttons = &Buttons{Cancel: label("cancel"), Continue: label("continue")}
	return v, nil
}
