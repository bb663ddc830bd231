package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCourtMappingsDefaults(t *testing.T) {
	courts, err := LoadCourtMappings()
	require.NoError(t, err)

	mapping, ok := courts.Lookup("delhi_district")
	require.True(t, ok)
	assert.Equal(t, "Delhi", mapping.State)

	_, ok = courts.Lookup("unknown_court")
	assert.False(t, ok)
}

func TestLoadCourtMappingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.json")
	content := `{
		"mumbai_district": {"state": "Maharashtra", "district": "Mumbai"},
		"delhi_district": {"state": "Delhi", "district": "New Delhi"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("COURT_MAP_FILE", path)

	courts, err := LoadCourtMappings()
	require.NoError(t, err)

	mumbai, ok := courts.Lookup("mumbai_district")
	require.True(t, ok)
	assert.Equal(t, "Maharashtra", mumbai.State)
	assert.Equal(t, "Mumbai", mumbai.District)

	// File entries override the built-in defaults
	delhi, ok := courts.Lookup("delhi_district")
	require.True(t, ok)
	assert.Equal(t, "New Delhi", delhi.District)
}

func TestLoadCourtMappingsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	t.Setenv("COURT_MAP_FILE", path)

	_, err := LoadCourtMappings()
	assert.Error(t, err)
}

func TestCourtMappingsIDs(t *testing.T) {
	courts := &CourtMappings{mappings: map[string]CourtMapping{
		"b_court": {},
		"a_court": {},
		"c_court": {},
	}}
	assert.Equal(t, []string{"a_court", "b_court", "c_court"}, courts.IDs())
}
