// Package vault resolves stored credentials for a domain. The vault is
// read-only from the pipeline's perspective: credentials are never
// written or cached beyond a single orchestration run, and absence is a
// normal outcome rather than an error.
package vault

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Credentials is a stored username/password pair for a domain.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Vault looks up stored credentials by domain.
type Vault interface {
	// Lookup returns the credentials for domain. An unreachable store and
	// a missing entry both resolve to absence; Lookup never fails.
	Lookup(domain string) (Credentials, bool)
}

// FileVault reads credentials from a JSON file mapping domain to
// credential pairs. The file is re-read on every lookup so entries
// added while mcpkit is running are picked up.
type FileVault struct {
	path string
}

// NewFileVault creates a vault backed by the given file. If path is
// empty, it defaults to ~/.mcpkit/credentials.json.
func NewFileVault(path string) *FileVault {
	if path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(homeDir, ".mcpkit", "credentials.json")
		}
	}
	return &FileVault{path: path}
}

// Lookup resolves credentials for domain. Any failure to read or decode
// the backing file is treated as absence.
func (v *FileVault) Lookup(domain string) (Credentials, bool) {
	if v.path == "" {
		return Credentials{}, false
	}

	raw, err := os.ReadFile(v.path)
	if err != nil {
		return Credentials{}, false
	}

	var entries map[string]Credentials
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Credentials{}, false
	}

	creds, exists := entries[domain]
	if !exists || creds.Username == "" {
		return Credentials{}, false
	}
	return creds, true
}
