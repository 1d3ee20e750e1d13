// Package browser wraps the Playwright automation engine behind the
// small surface the pipeline needs: session lifecycle with optional
// persistent profiles, page actions, and token-budgeted content
// extraction for model prompts.
package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// SessionManager owns the Playwright instance and the sessions launched
// from it. The pipeline coordinator acquires a manager for the duration
// of one run and guarantees Shutdown on every exit path.
type SessionManager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	sessions    map[string]*Session
	initialized bool
}

// NewSessionManager creates a new session manager. Initialize must be
// called before starting sessions.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Initialize installs (if needed) and starts the Playwright driver.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output is discarded so it cannot interleave with operator
	// prompts on stdout.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// StartSession launches a browser session with the given name and
// options. When opts.ProfileDir is set, the session runs inside a
// persistent context rooted at that directory, so cookies and login
// state survive across runs.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}
	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	session, err := m.launch(name, opts)
	if err != nil {
		return nil, err
	}

	m.sessions[name] = session
	return session, nil
}

// launch creates the browser context and page for a session.
func (m *SessionManager) launch(name string, opts SessionOptions) (*Session, error) {
	viewport := &playwright.Size{
		Width:  opts.Viewport.Width,
		Height: opts.Viewport.Height,
	}

	var browserInstance playwright.Browser
	var context playwright.BrowserContext

	if opts.ProfileDir != "" {
		persistentOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: &opts.Headless,
			Viewport: viewport,
		}
		persistent, err := m.playwright.Chromium.LaunchPersistentContext(opts.ProfileDir, persistentOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to launch persistent context: %w", err)
		}
		context = persistent
	} else {
		launched, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: &opts.Headless,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}

		ctx, err := launched.NewContext(playwright.BrowserNewContextOptions{Viewport: viewport})
		if err != nil {
			launched.Close()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}

		browserInstance = launched
		context = ctx
	}

	page, err := m.pageFor(context)
	if err != nil {
		context.Close()
		if browserInstance != nil {
			browserInstance.Close()
		}
		return nil, err
	}

	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	return &Session{
		Name:       name,
		Browser:    browserInstance,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

// pageFor returns the context's initial page, creating one if the
// context opened without any (persistent contexts usually open with a
// blank page already attached).
func (m *SessionManager) pageFor(context playwright.BrowserContext) (playwright.Page, error) {
	if pages := context.Pages(); len(pages) > 0 {
		return pages[0], nil
	}

	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

// CloseSession closes and removes a session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}

	session.close()
	delete(m.sessions, name)
	return nil
}

// Shutdown closes all sessions and stops Playwright. Safe to call on
// every exit path, including before Initialize succeeded.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, session := range m.sessions {
		session.close()
		delete(m.sessions, name)
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}

	return nil
}
