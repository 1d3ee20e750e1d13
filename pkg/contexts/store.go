// Package contexts persists the mapping from website domain to browser
// context identifier. A context identifies a reusable browser profile,
// so repeated runs against the same domain pick up the login state of
// earlier runs instead of re-authenticating.
package contexts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrProvisioningFailed indicates that a new browser context could not
// be created. Callers may proceed without a persistent context; reuse
// is an optimization, not a correctness requirement.
var ErrProvisioningFailed = errors.New("session context provisioning failed")

// Provisioner creates new browser context identifiers on demand.
type Provisioner interface {
	// NewContext provisions a context for the given domain and returns its
	// identifier.
	NewContext(ctx context.Context, domain string) (string, error)
}

// Store is a file-backed domain -> context identifier mapping.
//
// The backing file is read and written by the current process only;
// concurrent mcpkit invocations racing on context creation for the same
// domain are an accepted limitation.
type Store struct {
	path        string
	provisioner Provisioner

	mu   sync.Mutex
	data map[string]string
}

// NewStore creates a store backed by the given file. If path is empty,
// it defaults to ~/.mcpkit/contexts.json. A missing file is treated as
// an empty mapping.
func NewStore(path string, provisioner Provisioner) (*Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".mcpkit", "contexts.json")
	}

	s := &Store{
		path:        path,
		provisioner: provisioner,
		data:        make(map[string]string),
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load context mapping from %s: %w", path, err)
	}

	return s, nil
}

// GetOrCreate returns the persisted context identifier for domain,
// provisioning and persisting a new one on first use. The persisted
// mapping is the single source of truth: a domain never gets a second
// context across repeated calls within or across runs.
func (s *Store) GetOrCreate(ctx context.Context, domain string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.data[domain]; exists {
		return id, nil
	}

	if s.provisioner == nil {
		return "", fmt.Errorf("%w: no provisioner configured", ErrProvisioningFailed)
	}

	id, err := s.provisioner.NewContext(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	s.data[domain] = id
	if err := s.save(); err != nil {
		// The context exists but the mapping could not be persisted; hand
		// the identifier back so the current run can still use it.
		return id, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	return id, nil
}

// Get returns the context identifier for domain, if one is persisted.
func (s *Store) Get(domain string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.data[domain]
	return id, exists
}

// Delete removes the mapping for domain, reporting whether one existed.
func (s *Store) Delete(domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[domain]; !exists {
		return false, nil
	}

	delete(s.data, domain)
	if err := s.save(); err != nil {
		return true, fmt.Errorf("failed to persist context mapping: %w", err)
	}
	return true, nil
}

// List returns all domains with a persisted context, in no particular
// order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	domains := make([]string, 0, len(s.data))
	for domain := range s.data {
		domains = append(domains, domain)
	}
	return domains
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// load reads the mapping file. Missing file means empty mapping.
func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode context mapping: %w", err)
	}

	if data != nil {
		s.data = data
	}
	return nil
}

// save writes the mapping atomically via a temp file rename, so a crash
// mid-write cannot corrupt existing entries.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode context mapping: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0600); err != nil {
		return fmt.Errorf("failed to write temp mapping file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp mapping file: %w", err)
	}

	return nil
}
