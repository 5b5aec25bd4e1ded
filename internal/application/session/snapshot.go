package session

import (
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/form"
	domainwf "github.com/garyjia/mark-console/internal/domain/workflow"
)

// Snapshot is a read-only copy of the session state
type Snapshot struct {
	ID      string            `json:"id"`
	MarkRef string            `json:"mark_ref,omitempty"`
	Open    bool              `json:"open"`
	State   domainwf.State    `json:"state"`
	Step    string            `json:"step"`
	Action  action.ID         `json:"action,omitempty"`
	Values  form.Values       `json:"-"`
	Errors  map[string]bool   `json:"errors"`
	Search  map[string]string `json:"search,omitempty"`
}

// Snapshot copies the current session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(map[string]bool, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}
	search := make(map[string]string, len(s.search))
	for k, v := range s.search {
		search[k] = v
	}

	return Snapshot{
		ID:      s.id,
		MarkRef: s.markRef,
		Open:    s.open,
		State:   s.machine.State(),
		Step:    s.machine.State().Step(),
		Action:  s.selected,
		Values:  s.values.Clone(),
		Errors:  errs,
		Search:  search,
	}
}

// Fields renders the selected action's form. Nothing is rendered while selecting.
func (s *Session) Fields(label form.LabelFunc) ([]form.Field, error) {
	snap := s.Snapshot()
	if snap.State != domainwf.StateFilling {
		return nil, nil
	}
	return s.renderer.Render(form.State{
		Action: snap.Action,
		Values: snap.Values,
		Errors: snap.Errors,
		Search: snap.Search,
	}, label)
}

// Title is the dialog title label key: the picker title while selecting,
// the action's own label while filling
func (s *Session) Title() string {
	snap := s.Snapshot()
	if snap.State == domainwf.StateFilling {
		if def, err := s.catalog.Definition(snap.Action); err == nil {
			return def.LabelKey
		}
	}
	return "selectAction"
}
