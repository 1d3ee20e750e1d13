package browser

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window.
	// Authentication flows need a visible window for the manual fallback,
	// so the pipeline defaults to headful.
	Headless bool

	// ProfileDir is the persistent profile directory backing this session.
	// Empty launches an ephemeral context with no state carry-over.
	ProfileDir string

	// Viewport sets the initial viewport size.
	Viewport *Viewport

	// Timeout is the default per-operation timeout in milliseconds.
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Defaults for session configuration.
const (
	DefaultTimeout        = 30000.0 // milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// DefaultContentTokens caps page content included in model prompts.
	DefaultContentTokens = 4000
)
