package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_Versions(t *testing.T) {
	m := New(nil, nil)
	versions, err := m.versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_directory_users", versions[0])
	assert.IsNonDecreasing(t, versions)
}

func TestMigrator_MigrationsAreEmbedded(t *testing.T) {
	m := New(nil, nil)
	versions, err := m.versions()
	require.NoError(t, err)
	for _, v := range versions {
		_, err := m.files.Open(v + ".sql")
		assert.NoError(t, err, v)
	}
}
