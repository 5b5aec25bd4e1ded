package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/event"
	"github.com/garyjia/mark-console/internal/domain/form"
	domainwf "github.com/garyjia/mark-console/internal/domain/workflow"
)

var (
	// ErrClosed is returned for operations on a session whose dialog is not open
	ErrClosed = errors.New("session is closed")

	// ErrNotFilling is returned for form operations while no action form is open
	ErrNotFilling = errors.New("no action form is open")

	// ErrFieldNotInAction is returned when a field is not required by the selected action
	ErrFieldNotInAction = errors.New("field is not part of the selected action")
)

// Emitter receives completion events. Emission is fire-and-forget.
type Emitter interface {
	Publish(ctx context.Context, evt *event.Event)
}

// CloseFunc is notified whenever the session closes its host dialog
type CloseFunc func(s *Session)

// SubmitResult reports the outcome of a submit attempt
type SubmitResult struct {
	Accepted bool         `json:"accepted"`
	Missing  []string     `json:"missing,omitempty"`
	Event    *event.Event `json:"event,omitempty"`
}

// Session is one open action-entry dialog. It owns the selected action,
// field values, error flags and search buffers; none of it outlives a close.
type Session struct {
	mu sync.Mutex

	id       string
	markRef  string
	lang     string
	catalog  *action.Catalog
	renderer *form.Renderer
	emitter  Emitter
	label    form.LabelFunc
	onClose  CloseFunc
	logger   *zap.Logger

	machine  domainwf.StateMachine
	open     bool
	selected action.ID
	values   form.Values
	errors   map[string]bool
	search   map[string]string
}

// Option configures a session
type Option func(*Session)

// WithLanguage records the host's display language
func WithLanguage(lang string) Option {
	return func(s *Session) {
		s.lang = lang
	}
}

// WithEmitter sets where completion events go
func WithEmitter(e Emitter) Option {
	return func(s *Session) {
		s.emitter = e
	}
}

// WithLabels sets how option labels resolve when searching. Without it,
// label keys are matched as written.
func WithLabels(label form.LabelFunc) Option {
	return func(s *Session) {
		s.label = label
	}
}

// WithRenderer sets the field renderer
func WithRenderer(r *form.Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnClose registers the host's close notification
func OnClose(fn CloseFunc) Option {
	return func(s *Session) {
		s.onClose = fn
	}
}

// New opens a session at the selecting step for the given mark reference.
// The mark reference is carried into completion events and never inspected.
func New(catalog *action.Catalog, markRef string, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		markRef: markRef,
		catalog: catalog,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = form.NewRenderer(catalog)
	}
	if s.label == nil {
		s.label = func(key string) string { return key }
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	s.machine = buildStateMachine(s.complete, s.logTransition)
	s.open = true
	s.clearForm()
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// MarkRef returns the opaque mark reference
func (s *Session) MarkRef() string {
	return s.markRef
}

// Language returns the display language the session was opened with
func (s *Session) Language() string {
	return s.lang
}

// IsOpen reports whether the host dialog is open
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// SelectAction picks an action. A pass-through action completes immediately
// with an empty payload; every other action opens its form.
func (s *Session) SelectAction(ctx context.Context, id action.ID) (*event.Event, error) {
	s.mu.Lock()

	if !s.open {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if !s.catalog.Has(id) {
		s.mu.Unlock()
		s.logger.Error("Unknown action selected", zap.String("action_id", id.String()))
		return nil, fmt.Errorf("%w: %s", action.ErrUnknownAction, id)
	}

	if id.IsPassThrough() {
		if err := s.machine.Fire(ctx, domainwf.TriggerPassThrough); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		evt := event.NewActionCompleted(s.id, id.String(), s.markRef, nil)
		s.finishLocked(ctx)
		s.mu.Unlock()

		s.emit(ctx, evt)
		s.notifyClose()
		return evt, nil
	}

	defer s.mu.Unlock()
	if err := s.machine.Fire(ctx, domainwf.TriggerSelect); err != nil {
		return nil, err
	}
	s.clearForm()
	s.selected = id
	return nil, nil
}

// UpdateField sets a field value and clears its error flag. The value's kind
// must match the field and choices must come from the bound option set.
func (s *Session) UpdateField(name string, v form.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(name, v)
}

// UpdateFieldRaw parses wire text according to the field's kind and sets it
func (s *Session) UpdateFieldRaw(name, raw string) error {
	kind, err := s.catalog.FieldKind(name)
	if err != nil {
		return err
	}
	v, err := form.Parse(kind, raw)
	if err != nil {
		return err
	}
	return s.UpdateField(name, v)
}

// SetSearch stores the visible search text of a searchable field and returns
// the options whose labelled text matches it. The stored value is left alone.
func (s *Session) SetSearch(name, text string) ([]action.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireField(name); err != nil {
		return nil, err
	}
	matches, err := s.renderer.Suggestions(name, text, s.label)
	if err != nil {
		return nil, err
	}
	s.search[name] = text
	return matches, nil
}

// Suggestions returns the matches for the field's current search text
func (s *Session) Suggestions(name string) ([]action.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireField(name); err != nil {
		return nil, err
	}
	return s.renderer.Suggestions(name, s.search[name], s.label)
}

// ChooseSuggestion selects an option of a searchable field, setting both the
// stored value and the visible search text to it
func (s *Session) ChooseSuggestion(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireField(name); err != nil {
		return err
	}
	set, err := s.catalog.OptionsFor(name)
	if err != nil {
		return err
	}
	if !set.Searchable {
		return fmt.Errorf("%w: %s is not searchable", action.ErrNotChoice, name)
	}
	if err := s.updateLocked(name, form.ChoiceValue(value)); err != nil {
		return err
	}
	s.search[name] = value
	return nil
}

// GoBack returns to action selection, discarding the form
func (s *Session) GoBack(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrClosed
	}
	if err := s.machine.Fire(ctx, domainwf.TriggerBack); err != nil {
		return err
	}
	s.clearForm()
	return nil
}

// Submit validates the form. Missing required fields are flagged and nothing
// is emitted; a complete form emits one completion event and closes the session.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()

	if !s.open {
		s.mu.Unlock()
		return SubmitResult{}, ErrClosed
	}

	err := s.machine.Fire(ctx, domainwf.TriggerSubmit)
	if errors.Is(err, domainwf.ErrGuardFailed) {
		missing := s.missingLocked()
		s.errors = form.ErrorFlags(missing)
		s.mu.Unlock()

		s.logger.Debug("Submit rejected", zap.Strings("missing", missing))
		return SubmitResult{Missing: missing}, nil
	}
	if err != nil {
		s.mu.Unlock()
		return SubmitResult{}, err
	}

	evt := event.NewActionCompleted(s.id, s.selected.String(), s.markRef, s.values.Data())
	s.finishLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, evt)
	s.notifyClose()
	return SubmitResult{Accepted: true, Event: evt}, nil
}

// Cancel abandons the session from either step. No completion event is emitted.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()

	if !s.open {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.machine.Fire(ctx, domainwf.TriggerCancel); err != nil {
		s.mu.Unlock()
		return err
	}
	s.finishLocked(ctx)
	s.mu.Unlock()

	s.notifyClose()
	return nil
}

// Close handles the host dialog closing by any means. Closing an already
// closed session does nothing.
func (s *Session) Close(ctx context.Context) {
	if err := s.Cancel(ctx); err != nil && !errors.Is(err, ErrClosed) {
		s.logger.Error("Failed to cancel session on close", zap.Error(err))
	}
}

func (s *Session) updateLocked(name string, v form.Value) error {
	spec, err := s.requireField(name)
	if err != nil {
		return err
	}
	var set action.OptionSet
	if spec.Kind == action.KindSingleChoice {
		if set, err = s.catalog.OptionsFor(name); err != nil {
			return err
		}
	}
	if err := form.Check(spec, set, v); err != nil {
		return err
	}

	s.values[name] = v
	delete(s.errors, name)
	return nil
}

func (s *Session) complete(context.Context) bool {
	return len(s.missingLocked()) == 0
}

func (s *Session) missingLocked() []string {
	required, err := s.catalog.RequiredFields(s.selected)
	if err != nil {
		return nil
	}
	return form.Missing(required, s.values)
}

// requireField resolves a field of the selected action while filling
func (s *Session) requireField(name string) (action.FieldSpec, error) {
	if !s.open {
		return action.FieldSpec{}, ErrClosed
	}
	if s.machine.State() != domainwf.StateFilling {
		return action.FieldSpec{}, ErrNotFilling
	}
	required, err := s.catalog.RequiredFields(s.selected)
	if err != nil {
		return action.FieldSpec{}, err
	}
	for _, r := range required {
		if r == name {
			return s.catalog.Field(name)
		}
	}
	return action.FieldSpec{}, fmt.Errorf("%w: %s not in %s", ErrFieldNotInAction, name, s.selected)
}

// finishLocked resets a submitted or cancelled machine and closes the dialog
func (s *Session) finishLocked(ctx context.Context) {
	if state := s.machine.State(); !state.IsTerminal() {
		s.logger.Error("Finishing a session that has not ended", zap.String("state", state.String()))
	} else if err := s.machine.Fire(ctx, domainwf.TriggerReset); err != nil {
		s.logger.Error("Failed to reset session", zap.Error(err))
	}
	s.clearForm()
	s.open = false
}

func (s *Session) clearForm() {
	s.selected = ""
	s.values = form.Values{}
	s.errors = map[string]bool{}
	s.search = map[string]string{}
}

func (s *Session) emit(ctx context.Context, evt *event.Event) {
	s.logger.Info("Action completed",
		zap.String("event_id", evt.ID),
		zap.String("action_id", evt.ActionID),
		zap.String("mark_ref", evt.MarkRef),
		zap.Int("field_count", len(evt.Data)))

	if s.emitter != nil {
		s.emitter.Publish(ctx, evt)
	}
}

func (s *Session) notifyClose() {
	if s.onClose != nil {
		s.onClose(s)
	}
}

func (s *Session) logTransition(from, to domainwf.State, trigger domainwf.Trigger) {
	s.logger.Debug("Session transition",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("trigger", trigger.String()))
}
