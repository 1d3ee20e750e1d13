package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is an active browser session. For persistent sessions Browser
// is nil; the context owns the underlying browser process.
type Session struct {
	Name       string
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// touch updates the last-used timestamp.
func (s *Session) touch() {
	s.LastUsedAt = time.Now()
}

// close releases the session's resources, tolerating partial failures.
func (s *Session) close() {
	_ = s.Page.Close()
	_ = s.Context.Close()
	if s.Browser != nil {
		_ = s.Browser.Close()
	}
}

// Navigate loads the given URL and waits for the load event.
func (s *Session) Navigate(url string) error {
	s.touch()

	if _, err := s.Page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Click clicks the element matching selector.
func (s *Session) Click(selector string) error {
	s.touch()

	if err := s.Page.Click(selector); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill fills the input matching selector with value.
func (s *Session) Fill(selector, value string) error {
	s.touch()

	if err := s.Page.Fill(selector, value); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Press presses a key on the element matching selector (e.g. "Enter").
func (s *Session) Press(selector, key string) error {
	s.touch()

	if err := s.Page.Press(selector, key); err != nil {
		return fmt.Errorf("press failed: %w", err)
	}
	return nil
}

// WaitForLoad waits for the network to go idle, up to timeout. Callers
// treat a timeout as best-effort: slow pages should not fail the flow.
func (s *Session) WaitForLoad(timeout time.Duration) error {
	s.touch()

	ms := float64(timeout.Milliseconds())
	err := s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: &ms,
	})
	if err != nil {
		return fmt.Errorf("wait for load failed: %w", err)
	}
	return nil
}

// ExtractText returns the page title and visible body text, truncated
// to at most maxTokens tokens for inclusion in model prompts.
func (s *Session) ExtractText(maxTokens int) (string, error) {
	s.touch()

	body, err := s.Page.QuerySelector("body")
	if err != nil {
		return "", fmt.Errorf("body query failed: %w", err)
	}
	if body == nil {
		return "", fmt.Errorf("no body element found")
	}

	text, err := body.InnerText()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}

	if title, titleErr := s.Page.Title(); titleErr == nil && title != "" {
		text = title + "\n\n" + text
	}

	if maxTokens <= 0 {
		maxTokens = DefaultContentTokens
	}
	return truncateTokens(text, maxTokens), nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Title returns the current page title.
func (s *Session) Title() (string, error) {
	return s.Page.Title()
}
