package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	assert.Len(t, c.Candidates(), 18)
	assert.Len(t, c.Universities(), 12)
	assert.Equal(t, []string{"Germany", "France", "Italy", "Netherlands", "Finland"}, c.CountryNames())
	assert.Equal(t, CountBounds{Min: 2, Max: 12}, c.CountBounds())

	germany, ok := c.Country("germany")
	require.True(t, ok)
	assert.Equal(t, "German", germany.Language)
	assert.True(t, germany.AlwaysIncludeLanguage)
	assert.Len(t, germany.Companies, 20)

	france, ok := c.Country("France")
	require.True(t, ok)
	assert.False(t, france.AlwaysIncludeLanguage)

	_, ok = c.Country("Atlantis")
	assert.False(t, ok)

	assert.True(t, c.ValidEducationLevel("Master of Science in Computer Science"))
	assert.False(t, c.ValidEducationLevel("PhD"))
}

func TestCatalogReturnsCopies(t *testing.T) {
	c := Default()
	pool := c.Candidates()
	pool[0].Name = "Changed"
	assert.NotEqual(t, "Changed", c.Candidates()[0].Name)

	germany, _ := c.Country("Germany")
	germany.Cities[0] = "Changed"
	again, _ := c.Country("Germany")
	assert.NotEqual(t, "Changed", again.Cities[0])
}

func TestParseRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not yaml", raw: "candidates: ["},
		{name: "empty candidates", raw: "candidates: []\nuniversities: [A, B]\neducationLevels: [X]\ncountries: [{name: C, cities: [a], companies: [b]}]"},
		{name: "country without cities", raw: "candidates: [{name: A}]\nuniversities: [A, B]\neducationLevels: [X]\ncountries: [{name: C, companies: [b]}]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
candidates:
  - {name: Ada Lovelace, gender: Female, origin: White}
universities: [A, B]
educationLevels: [Bachelor of Science in Computer Science]
countries:
  - {name: Germany, language: German, cities: [Berlin], companies: [SAP]}
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Candidates(), 1)
	assert.Equal(t, "c01", c.Candidates()[0].ID)
	assert.Equal(t, CountBounds{Min: 2, Max: 2}, c.CountBounds())

	def, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), def)
}
