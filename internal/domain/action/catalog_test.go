package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_RequiredFields(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		id   ID
		want []string
	}{
		{AcceptanceAct, []string{"buyer", "operationType"}},
		{ImportNoticeEAEU, []string{"senderIIN", "senderName", "countryOfOrigin"}},
		{ImportNoticeThird, []string{"exportCountry", "registrationNumber", "registrationDate", "decisionCode", "documentType", "documentNumber", "documentDate"}},
		{EnterCirculationNotice, []string{"reason", "basisDocumentName", "basisDocumentNumber", "basisDocumentDate"}},
		{ExitCirculationNotice, []string{"reason", "basisDocumentName", "basisDocumentNumber", "basisDocumentDate"}},
		{ExportNoticeEAEU, []string{"recipientCountry", "recipientIIN", "primaryDocumentNumber", "recipientName", "primaryDocumentDate", "actualShipmentDate"}},
		{AcceptanceNoticeEAEU, []string{"shipmentDocumentId", "acceptanceDate"}},
		{Other, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			got, err := c.RequiredFields(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_RequiredFields_UnknownAction(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.RequiredFields(ID("refundNotice"))
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestCatalog_RequiredFields_ReturnsCopy(t *testing.T) {
	c := DefaultCatalog()

	first, err := c.RequiredFields(AcceptanceAct)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := c.RequiredFields(AcceptanceAct)
	require.NoError(t, err)
	assert.Equal(t, "buyer", second[0])
}

func TestCatalog_FieldKind(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		field string
		want  FieldKind
	}{
		{"buyer", KindShortText},
		{"operationType", KindSingleChoice},
		{"exportCountry", KindSingleChoice},
		{"registrationDate", KindDate},
		{"acceptanceDate", KindDate},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := c.FieldKind(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := c.FieldKind("colour")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCatalog_EveryRequiredFieldIsBound(t *testing.T) {
	c := DefaultCatalog()

	for _, def := range c.Actions() {
		for _, name := range def.RequiredFields {
			_, err := c.Field(name)
			assert.NoError(t, err, "action %s field %s", def.ID, name)
		}
	}
}

func TestCatalog_OptionsFor(t *testing.T) {
	c := DefaultCatalog()

	t.Run("small choice", func(t *testing.T) {
		set, err := c.OptionsFor("recipientCountry")
		require.NoError(t, err)
		assert.False(t, set.Searchable)
		assert.True(t, set.Contains("belarus"))
		assert.False(t, set.Contains("armenia"))
	})

	t.Run("searchable choice", func(t *testing.T) {
		set, err := c.OptionsFor("exportCountry")
		require.NoError(t, err)
		assert.True(t, set.Searchable)
		assert.Len(t, set.Options, 63)
	})

	t.Run("text field", func(t *testing.T) {
		_, err := c.OptionsFor("buyer")
		assert.ErrorIs(t, err, ErrNotChoice)
	})
}

func TestNewCatalog_RejectsInconsistentTables(t *testing.T) {
	t.Run("unbound required field", func(t *testing.T) {
		_, err := NewCatalog(
			[]Definition{{ID: AcceptanceAct, RequiredFields: []string{"buyer"}}},
			nil, nil,
		)
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("choice without option set", func(t *testing.T) {
		_, err := NewCatalog(nil,
			[]FieldSpec{{Name: "decisionCode", Kind: KindSingleChoice, OptionSet: "missing"}},
			nil,
		)
		assert.ErrorIs(t, err, ErrUnknownOptionSet)
	})

	t.Run("pass-through with fields", func(t *testing.T) {
		_, err := NewCatalog(
			[]Definition{{ID: Other, RequiredFields: []string{"buyer"}}},
			[]FieldSpec{{Name: "buyer", Kind: KindShortText}},
			nil,
		)
		assert.Error(t, err)
	})

	t.Run("duplicate action", func(t *testing.T) {
		_, err := NewCatalog(
			[]Definition{{ID: Other}, {ID: Other}},
			nil, nil,
		)
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	set, err := DefaultCatalog().OptionsFor("exportCountry")
	require.NoError(t, err)

	t.Run("case-insensitive substring", func(t *testing.T) {
		got := Search(set, "Герман", DefaultSuggestionLimit, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "Германия", got[0].Value)

		got = Search(set, "герман", DefaultSuggestionLimit, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "Германия", got[0].Value)
	})

	t.Run("matches inside the name", func(t *testing.T) {
		got := Search(set, "южная", DefaultSuggestionLimit, nil)
		require.Len(t, got, 1)
		assert.Equal(t, "Корея Южная", got[0].Value)
	})

	t.Run("caps suggestions", func(t *testing.T) {
		got := Search(set, "а", DefaultSuggestionLimit, nil)
		assert.Len(t, got, DefaultSuggestionLimit, nil)
		assert.Equal(t, "Австралия", got[0].Value)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Search(set, "Атлантида", DefaultSuggestionLimit, nil))
	})

	t.Run("labelled options match display text", func(t *testing.T) {
		keyed := OptionSet{Name: "keyed", Searchable: true, Options: []Option{{Value: "1", LabelKey: "releaseAllowed"}}}
		label := func(string) string { return "Выпуск разрешён" }

		assert.Equal(t, keyed.Options, Search(keyed, "разрешён", 0, label))
		assert.Empty(t, Search(keyed, "release", 0, label))
		assert.Empty(t, Search(keyed, "1", 0, label))
	})

	t.Run("substitute option set", func(t *testing.T) {
		custom := OptionSet{Name: "test", Searchable: true, Options: []Option{{Value: "Alpha"}, {Value: "Beta"}, {Value: "alphabet"}}}
		got := Search(custom, "ALPHA", 0, nil)
		assert.Equal(t, []Option{{Value: "Alpha"}, {Value: "alphabet"}}, got)
	})
}
