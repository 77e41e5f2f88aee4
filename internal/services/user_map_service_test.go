package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alimgiray/prslo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userMapCSV = `github_username,ldap
alice-gh,alice
bob-sq, bob
,nobody
carol-gh,
`

func TestParseUserMap(t *testing.T) {
	m, err := ParseUserMap(strings.NewReader(userMapCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "alice", m.Alias("alice-gh"))
	assert.Equal(t, "bob", m.Alias("bob-sq"))
	assert.Equal(t, "unmapped", m.Alias("unmapped"))
	assert.Equal(t, []string{"alice-gh", "bob-sq"}, m.Logins())

	login, err := m.Login("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob-sq", login)

	_, err = m.Login("nobody")
	assert.ErrorIs(t, err, models.ErrUserNotMapped)
}

func TestUserMapResolve(t *testing.T) {
	m := NewUserMap(map[string]string{"alice-gh": "alice"})

	assert.Equal(t, "alice-gh", m.Resolve("alice"))
	assert.Equal(t, "alice", m.Resolve("@alice"))
	assert.Equal(t, "dave", m.Resolve("dave"))
	assert.True(t, m.Has("alice-gh"))
	assert.False(t, m.Has("alice"))
}

func TestParseUserMapRejectsMissingColumns(t *testing.T) {
	_, err := ParseUserMap(strings.NewReader("login,name\na,b\n"))
	assert.Error(t, err)

	m, err := ParseUserMap(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestLoadUserMap(t *testing.T) {
	m, err := LoadUserMap(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(userMapCSV), 0o644))
	m, err = LoadUserMap(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}
