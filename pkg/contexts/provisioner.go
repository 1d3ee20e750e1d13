package contexts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ProfileProvisioner provisions browser contexts as persistent profile
// directories on local disk. Each context identifier names a directory
// under BaseDir that the browser engine uses as its user data dir,
// which is what carries cookies and login state across runs.
type ProfileProvisioner struct {
	// BaseDir is the parent directory for profile directories. Empty
	// means ~/.mcpkit/profiles.
	BaseDir string
}

// NewContext creates a fresh profile directory and returns its
// identifier.
func (p *ProfileProvisioner) NewContext(ctx context.Context, domain string) (string, error) {
	baseDir, err := p.baseDir()
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Join(baseDir, id), 0750); err != nil {
		return "", fmt.Errorf("failed to create profile directory: %w", err)
	}

	return id, nil
}

// ProfileDir returns the profile directory for a context identifier.
func (p *ProfileProvisioner) ProfileDir(contextID string) (string, error) {
	baseDir, err := p.baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, contextID), nil
}

func (p *ProfileProvisioner) baseDir() (string, error) {
	if p.BaseDir != "" {
		return p.BaseDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mcpkit", "profiles"), nil
}
