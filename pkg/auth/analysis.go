// Package auth classifies and drives website authentication: the
// Analyzer decides whether the current page requires sign-in, and the
// Orchestrator walks the login flow to completion with graceful
// fallback to a human operator.
package auth

// Strategy is the analyzer's recommended way to complete login.
type Strategy string

const (
	StrategyAutofill     Strategy = "autofill"
	StrategyManual       Strategy = "manual"
	StrategyPasswordless Strategy = "passwordless"
	StrategyUnknown      Strategy = "unknown"
)

// validStrategy reports whether s is a recognized strategy value.
func validStrategy(s Strategy) bool {
	switch s {
	case StrategyAutofill, StrategyManual, StrategyPasswordless, StrategyUnknown, "":
		return true
	}
	return false
}

// MFA describes a multi-factor requirement the analyzer detected.
type MFA struct {
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// PageAuth is the classification of one page's authentication
// requirement. It is re-derived fresh at every decision point of the
// orchestrator and never mutated in place.
type PageAuth struct {
	// RequiresAuth reports whether the page demands sign-in before the
	// site's functionality is reachable.
	RequiresAuth bool `json:"requiresAuth"`

	// LoginButton describes, in natural language, the control that starts
	// the login flow, if one is visible.
	LoginButton string `json:"loginButton,omitempty"`

	// CanAutofill reports whether username/password fields are present
	// and fillable on the current page.
	CanAutofill bool `json:"canAutofill,omitempty"`

	// RecommendedStrategy is the analyzer's suggested login approach.
	RecommendedStrategy Strategy `json:"recommendedStrategy,omitempty"`

	// Steps are suggested login steps in natural language.
	Steps []string `json:"steps,omitempty"`

	// Blockers lists obstacles to automated login (SSO redirects,
	// captchas, and the like).
	Blockers []string `json:"blockers,omitempty"`

	// MFA describes a detected multi-factor requirement.
	MFA *MFA `json:"mfa,omitempty"`

	// Summary is a short human-readable description of the page state.
	Summary string `json:"summary,omitempty"`
}

// Source records which path produced an Analysis. Preserving the
// distinction keeps heuristic classifications observable instead of
// collapsing them into model-derived ones.
type Source string

const (
	// SourceModel marks an analysis extracted by the language model.
	SourceModel Source = "model"

	// SourceHeuristic marks a best-effort fallback based on URL keywords.
	SourceHeuristic Source = "heuristic"
)

// Analysis is a PageAuth tagged with the path that produced it.
type Analysis struct {
	Source Source
	PageAuth
}
