package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionSets(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := `
option_sets:
  - name: recipientCountries
    options:
      - value: belarus
        label_key: belarus
      - value: russia
        label_key: russia
      - value: armenia
        label_key: armenia
  - name: ports
    searchable: true
    options:
      - value: Новороссийск
      - value: Владивосток
`
		sets, err := ParseOptionSets([]byte(doc))
		require.NoError(t, err)
		require.Len(t, sets, 2)
		assert.Equal(t, "recipientCountries", sets[0].Name)
		assert.Len(t, sets[0].Options, 3)
		assert.True(t, sets[1].Searchable)
		assert.Equal(t, "Владивосток", sets[1].Options[1].Value)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		doc := `
option_sets:
  - name: ports
    colour: red
    options:
      - value: x
`
		_, err := ParseOptionSets([]byte(doc))
		assert.Error(t, err)
	})

	t.Run("rejects empty option list", func(t *testing.T) {
		_, err := ParseOptionSets([]byte("option_sets:\n  - name: ports\n    options: []\n"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := ParseOptionSets([]byte("option_sets: [unclosed"))
		assert.Error(t, err)
	})
}

func TestLoadOptionSets_AndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	doc := "option_sets:\n  - name: recipientCountries\n    options:\n      - value: kazakhstan\n        label_key: kazakhstan\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	overrides, err := LoadOptionSets(path)
	require.NoError(t, err)

	merged := MergeOptionSets(DefaultOptionSets(), overrides)
	assert.Len(t, merged, len(DefaultOptionSets()))

	c, err := NewCatalog(DefaultDefinitions(), DefaultFields(), merged)
	require.NoError(t, err)

	set, err := c.OptionsFor("recipientCountry")
	require.NoError(t, err)
	assert.True(t, set.Contains("kazakhstan"))
	assert.False(t, set.Contains("russia"))
}

func TestLoadOptionSets_MissingFile(t *testing.T) {
	_, err := LoadOptionSets(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
