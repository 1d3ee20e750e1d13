package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileVault_MissingFileIsAbsent(t *testing.T) {
	v := NewFileVault(filepath.Join(t.TempDir(), "credentials.json"))

	_, found := v.Lookup("example.com")
	assert.False(t, found)
}

func TestFileVault_CorruptFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0600))

	v := NewFileVault(path)
	_, found := v.Lookup("example.com")
	assert.False(t, found)
}

func TestFileVault_Lookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	content := `{
		"example.com": {"username": "alice", "password": "s3cret"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := NewFileVault(path)

	creds, found := v.Lookup("example.com")
	require.True(t, found)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "s3cret", creds.Password)

	_, found = v.Lookup("other.com")
	assert.False(t, found)
}

func TestFileVault_EmptyUsernameIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"example.com": {"username": "", "password": "x"}}`), 0600))

	v := NewFileVault(path)
	_, found := v.Lookup("example.com")
	assert.False(t, found)
}
