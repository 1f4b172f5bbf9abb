package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleMapping_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "roles.json")
	mapping := NewRoleMapping(path)

	require.NoError(t, mapping.Save([]string{"Data Scientist", "Backend Developer"}))

	roles, err := mapping.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0": "Data Scientist", "1": "Backend Developer"}, roles)

	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, files, 1, "temp files are cleaned up")
}

func TestRoleMapping_Missing(t *testing.T) {
	_, err := NewRoleMapping(filepath.Join(t.TempDir(), "roles.json")).Load()
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestRoleMapping_Malformed(t *testing.T) {
	path := writeTemp(t, "roles.json", []byte(`["Data Scientist"]`))
	_, err := NewRoleMapping(path).Load()
	assert.ErrorIs(t, err, ErrMissingData)
}
