package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/session"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/domain/event"
	"github.com/garyjia/mark-console/internal/domain/form"
)

var (
	// ErrSessionNotFound is returned for unknown or already closed session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidMarkStatus is returned when filtering marks by an unknown status
	ErrInvalidMarkStatus = errors.New("unknown mark status")
)

// SubmitOutcome is the result of a submit plus the view after it
type SubmitOutcome struct {
	session.SubmitResult
	View *View `json:"view"`
}

// ConsoleService drives action-entry sessions on behalf of hosts
type ConsoleService interface {
	// Catalog describes every action with labels in the given language
	Catalog(lang string) ([]CatalogAction, error)

	// Open starts a session at the selecting step. The mark reference is
	// carried into completion events as given.
	Open(ctx context.Context, markRef, lang string) (*View, error)

	// View returns the current view of a session
	View(ctx context.Context, id string) (*View, error)

	// SelectAction picks an action; pass-through actions return their completion event
	SelectAction(ctx context.Context, id string, actionID action.ID) (*View, *event.Event, error)

	// UpdateField sets a field from its wire text
	UpdateField(ctx context.Context, id, name, raw string) (*View, error)

	// Search stores search text and returns labelled suggestions
	Search(ctx context.Context, id, name, text string) ([]form.Choice, error)

	// Choose picks a suggestion of a searchable field
	Choose(ctx context.Context, id, name, value string) (*View, error)

	// Back returns to action selection
	Back(ctx context.Context, id string) (*View, error)

	// Submit validates and, when complete, emits the completion event
	Submit(ctx context.Context, id string) (*SubmitOutcome, error)

	// Close cancels and removes a session
	Close(ctx context.Context, id string) error

	// Marks lists marks, optionally by status
	Marks(ctx context.Context, status string) ([]*entity.Mark, error)

	// Mark returns one mark
	Mark(ctx context.Context, id string) (*entity.Mark, error)

	// ActiveSessions returns the number of open sessions
	ActiveSessions() int
}

type consoleServiceImpl struct {
	catalog  *action.Catalog
	renderer *form.Renderer
	store    port.SessionStore
	marks    port.MarkRepository
	labels   port.LabelLookup
	emitter  session.Emitter
	zlog     *zap.Logger
	logger   Logger
}

// NewConsoleService creates a new ConsoleService
func NewConsoleService(
	catalog *action.Catalog,
	renderer *form.Renderer,
	store port.SessionStore,
	marks port.MarkRepository,
	labels port.LabelLookup,
	emitter session.Emitter,
	logger *zap.Logger,
) ConsoleService {
	if renderer == nil {
		renderer = form.NewRenderer(catalog)
	}
	return &consoleServiceImpl{
		catalog:  catalog,
		renderer: renderer,
		store:    store,
		marks:    marks,
		labels:   labels,
		emitter:  emitter,
		zlog:     logger,
		logger:   logger.Sugar(),
	}
}

func (s *consoleServiceImpl) Catalog(lang string) ([]CatalogAction, error) {
	label := s.labels.Lookup(lang)
	defs := s.catalog.Actions()
	out := make([]CatalogAction, 0, len(defs))

	for _, def := range defs {
		ca := CatalogAction{ID: def.ID, LabelKey: def.LabelKey, Label: label(def.LabelKey), Fields: []CatalogField{}}
		for _, name := range def.RequiredFields {
			spec, err := s.catalog.Field(name)
			if err != nil {
				return nil, err
			}
			cf := CatalogField{Name: name, Kind: spec.Kind, Label: label(spec.LabelKey), OptionSet: spec.OptionSet}
			if spec.PlaceholderKey != "" {
				cf.Placeholder = label(spec.PlaceholderKey)
			}
			if spec.Kind == action.KindSingleChoice {
				set, err := s.catalog.OptionsFor(name)
				if err != nil {
					return nil, err
				}
				cf.Searchable = set.Searchable
			}
			ca.Fields = append(ca.Fields, cf)
		}
		out = append(out, ca)
	}
	return out, nil
}

func (s *consoleServiceImpl) Open(ctx context.Context, markRef, lang string) (*View, error) {
	sess := session.New(s.catalog, markRef,
		session.WithLanguage(lang),
		session.WithLabels(s.labels.Lookup(lang)),
		session.WithRenderer(s.renderer),
		session.WithEmitter(s.emitter),
		session.WithLogger(s.zlog),
		session.OnClose(func(closed *session.Session) {
			s.store.Delete(closed.ID())
		}),
	)
	s.store.Put(sess)

	s.logger.Info("Session opened", "session_id", sess.ID(), "mark_ref", markRef, "lang", lang)
	return s.view(sess)
}

func (s *consoleServiceImpl) View(ctx context.Context, id string) (*View, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess)
}

func (s *consoleServiceImpl) SelectAction(ctx context.Context, id string, actionID action.ID) (*View, *event.Event, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}

	evt, err := sess.SelectAction(ctx, actionID)
	if err != nil {
		if errors.Is(err, action.ErrUnknownAction) {
			s.logger.Error("Unknown action requested", "session_id", id, "action_id", actionID)
		}
		return nil, nil, err
	}

	v, err := s.view(sess)
	return v, evt, err
}

func (s *consoleServiceImpl) UpdateField(ctx context.Context, id, name, raw string) (*View, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.UpdateFieldRaw(name, raw); err != nil {
		return nil, err
	}
	return s.view(sess)
}

func (s *consoleServiceImpl) Search(ctx context.Context, id, name, text string) ([]form.Choice, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	matches, err := sess.SetSearch(name, text)
	if err != nil {
		return nil, err
	}

	label := s.labels.Lookup(sess.Language())
	current := sess.Snapshot().Values[name]
	choices := make([]form.Choice, len(matches))
	for i, m := range matches {
		choices[i] = form.Choice{Value: m.Value, Label: m.Text(label), Selected: current != nil && current.String() == m.Value}
	}
	return choices, nil
}

func (s *consoleServiceImpl) Choose(ctx context.Context, id, name, value string) (*View, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.ChooseSuggestion(name, value); err != nil {
		return nil, err
	}
	return s.view(sess)
}

func (s *consoleServiceImpl) Back(ctx context.Context, id string) (*View, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.GoBack(ctx); err != nil {
		return nil, err
	}
	return s.view(sess)
}

func (s *consoleServiceImpl) Submit(ctx context.Context, id string) (*SubmitOutcome, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	res, err := sess.Submit(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Accepted {
		s.logger.Info("Submit incomplete", "session_id", id, "missing", res.Missing)
	}

	v, err := s.view(sess)
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{SubmitResult: res, View: v}, nil
}

func (s *consoleServiceImpl) Close(ctx context.Context, id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.Close(ctx)
	// a session already closed by submit is gone from the store
	s.store.Delete(id)

	s.logger.Info("Session closed", "session_id", id)
	return nil
}

func (s *consoleServiceImpl) Marks(ctx context.Context, status string) ([]*entity.Mark, error) {
	if status != "" && !entity.IsValidMarkStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMarkStatus, status)
	}
	return s.marks.List(ctx, status)
}

func (s *consoleServiceImpl) Mark(ctx context.Context, id string) (*entity.Mark, error) {
	return s.marks.GetByID(ctx, id)
}

func (s *consoleServiceImpl) ActiveSessions() int {
	return s.store.Count()
}

func (s *consoleServiceImpl) get(id string) (*session.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *consoleServiceImpl) view(sess *session.Session) (*View, error) {
	return buildView(sess, s.labels.Lookup(sess.Language()), s.catalog.Actions())
}
