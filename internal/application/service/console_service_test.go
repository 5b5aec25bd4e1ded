package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/session"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/domain/form"
)

func newConsole(t *testing.T) (ConsoleService, *mockStore, *recordingEmitter) {
	t.Helper()
	store := newMockStore()
	emitter := &recordingEmitter{}
	marks := &mockMarkRepo{marks: map[string]*entity.Mark{
		"1": {ID: "1", Status: entity.MarkStatusOrdered, Quantity: 500},
		"3": {ID: "3", Status: entity.MarkStatusInCirculation, Quantity: 150},
	}}
	svc := NewConsoleService(action.DefaultCatalog(), nil, store, marks, mockLabels{}, emitter, zap.NewNop())
	return svc, store, emitter
}

func TestConsoleService_Open(t *testing.T) {
	svc, store, _ := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "1", "en")
	require.NoError(t, err)
	assert.True(t, v.Open)
	assert.Equal(t, "selecting", v.Step)
	assert.Equal(t, "en:selectAction", v.Title)
	require.Len(t, v.Actions, 8)
	assert.Equal(t, ActionChoice{ID: action.AcceptanceAct, Label: "en:acceptanceAct"}, v.Actions[0])
	assert.Empty(t, v.Fields)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, 1, svc.ActiveSessions())

	unknown, err := svc.Open(ctx, "not-a-mark", "en")
	require.NoError(t, err)
	assert.Equal(t, "not-a-mark", unknown.MarkRef)
	assert.Equal(t, 2, svc.ActiveSessions())
}

func TestConsoleService_FillAndSubmit(t *testing.T) {
	svc, store, emitter := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "1", "ru")
	require.NoError(t, err)
	id := v.ID

	v, _, err = svc.SelectAction(ctx, id, action.AcceptanceAct)
	require.NoError(t, err)
	assert.Equal(t, "filling", v.Step)
	assert.Equal(t, "ru:acceptanceAct", v.Title)
	require.Len(t, v.Fields, 2)
	assert.Equal(t, "ru:buyer *", v.Fields[0].Label)
	require.NotNil(t, v.Buttons)
	assert.Equal(t, "ru:continue", v.Buttons.Continue)

	out, err := svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, []string{"buyer", "operationType"}, out.Missing)
	assert.True(t, out.View.Fields[0].Invalid)
	assert.Equal(t, "ru:required", out.View.Fields[0].Error)

	v, err = svc.UpdateField(ctx, id, "buyer", "ACME")
	require.NoError(t, err)
	assert.False(t, v.Errors["buyer"])
	assert.Equal(t, "ACME", v.Values["buyer"])

	_, err = svc.UpdateField(ctx, id, "operationType", "barter")
	assert.ErrorIs(t, err, form.ErrOptionNotAllowed)
	_, err = svc.UpdateField(ctx, id, "operationType", "realization")
	require.NoError(t, err)

	out, err = svc.Submit(ctx, id)
	require.NoError(t, err)
	require.True(t, out.Accepted)
	assert.Equal(t, map[string]any{"buyer": "ACME", "operationType": "realization"}, out.Event.Data)
	assert.Equal(t, "1", out.Event.MarkRef)
	assert.False(t, out.View.Open)
	assert.Equal(t, "selecting", out.View.Step)

	require.Len(t, emitter.events, 1)
	assert.Zero(t, store.Count(), "submitted sessions leave the store")

	_, err = svc.View(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConsoleService_OtherAction(t *testing.T) {
	svc, store, emitter := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "", "ru")
	require.NoError(t, err)

	after, evt, err := svc.SelectAction(ctx, v.ID, action.Other)
	require.NoError(t, err)
	require.NotNil(t, evt)
	assert.Empty(t, evt.Data)
	assert.False(t, after.Open)
	assert.Len(t, emitter.events, 1)
	assert.Zero(t, store.Count())
}

func TestConsoleService_UnknownAction(t *testing.T) {
	svc, _, _ := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "", "ru")
	require.NoError(t, err)

	_, _, err = svc.SelectAction(ctx, v.ID, "bogus")
	assert.ErrorIs(t, err, action.ErrUnknownAction)
}

func TestConsoleService_SearchAndChoose(t *testing.T) {
	svc, _, _ := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "3", "ru")
	require.NoError(t, err)
	_, _, err = svc.SelectAction(ctx, v.ID, action.ImportNoticeThird)
	require.NoError(t, err)

	choices, err := svc.Search(ctx, v.ID, "exportCountry", "Герман")
	require.NoError(t, err)
	assert.Equal(t, []form.Choice{{Value: "Германия", Label: "Германия"}}, choices)

	v, err = svc.Choose(ctx, v.ID, "exportCountry", "Германия")
	require.NoError(t, err)
	assert.Equal(t, "Германия", v.Values["exportCountry"])
	assert.Equal(t, "Германия", v.Fields[0].SearchText)
	assert.Equal(t, "Германия", v.Fields[0].Value)

	choices, err = svc.Search(ctx, v.ID, "exportCountry", "Германия")
	require.NoError(t, err)
	require.Len(t, choices, 1)
	assert.True(t, choices[0].Selected)
}

func TestConsoleService_BackAndClose(t *testing.T) {
	svc, store, emitter := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "1", "ru")
	require.NoError(t, err)
	_, _, err = svc.SelectAction(ctx, v.ID, action.AcceptanceAct)
	require.NoError(t, err)
	_, err = svc.UpdateField(ctx, v.ID, "buyer", "ACME")
	require.NoError(t, err)

	back, err := svc.Back(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "selecting", back.Step)
	assert.Empty(t, back.Values)
	assert.Len(t, back.Actions, 8)

	require.NoError(t, svc.Close(ctx, v.ID))
	assert.Zero(t, store.Count())
	assert.Empty(t, emitter.events)
	assert.ErrorIs(t, svc.Close(ctx, v.ID), ErrSessionNotFound)
}

func TestConsoleService_WrongStep(t *testing.T) {
	svc, _, _ := newConsole(t)
	ctx := context.Background()

	v, err := svc.Open(ctx, "", "ru")
	require.NoError(t, err)

	_, err = svc.UpdateField(ctx, v.ID, "buyer", "ACME")
	assert.ErrorIs(t, err, session.ErrNotFilling)
}

func TestConsoleService_Catalog(t *testing.T) {
	svc, _, _ := newConsole(t)

	actions, err := svc.Catalog("en")
	require.NoError(t, err)
	require.Len(t, actions, 8)

	third := actions[2]
	assert.Equal(t, action.ImportNoticeThird, third.ID)
	assert.Equal(t, "en:importNoticeThird", third.Label)
	assert.Equal(t, "exportCountry", third.Fields[0].Name)
	assert.True(t, third.Fields[0].Searchable)
	assert.Equal(t, "en:startTypingCountry", third.Fields[0].Placeholder)

	other := actions[7]
	assert.Equal(t, action.Other, other.ID)
	assert.Empty(t, other.Fields)
}

func TestConsoleService_Marks(t *testing.T) {
	svc, _, _ := newConsole(t)
	ctx := context.Background()

	all, err := svc.Marks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ordered, err := svc.Marks(ctx, entity.MarkStatusOrdered)
	require.NoError(t, err)
	require.Len(t, ordered, 1)
	assert.Equal(t, "1", ordered[0].ID)

	_, err = svc.Marks(ctx, "lost")
	assert.ErrorIs(t, err, ErrInvalidMarkStatus)

	_, err = svc.Mark(ctx, "42")
	assert.ErrorIs(t, err, port.ErrNotFound)
}
