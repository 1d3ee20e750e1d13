package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mcpkit/mcpkit/pkg/browser"
	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/llm/parser"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/types"
)

// authKeywords matches URLs that textually look like login pages. A
// known approximation: paths containing words like "account" match even
// when no login is required. Best-effort only, never a correctness
// contract.
var authKeywords = regexp.MustCompile(`(?i)login|signin|sign-in|auth|account`)

const analyzerSystemPrompt = `You are analyzing a web page for authentication requirements. Respond with exactly one JSON object, no prose and no code fences, matching this schema:

{
  "requiresAuth": true | false,
  "loginButton": "natural-language description of the control that starts login, if visible",
  "canAutofill": true | false,
  "recommendedStrategy": "autofill" | "manual" | "passwordless" | "unknown",
  "steps": ["suggested login steps"],
  "blockers": ["obstacles to automated login such as SSO, captcha, MFA"],
  "mfa": {"required": true | false, "description": "..."},
  "summary": "one sentence describing the page's authentication state"
}

requiresAuth is true only if the page blocks access to the site's functionality until the user signs in.`

// Analyzer classifies the current page's authentication requirement
// with a single structured-extraction request to the model.
type Analyzer struct {
	page     browser.Page
	provider llm.Provider
	log      *logging.Logger
}

// NewAnalyzer creates an analyzer over the given page and provider.
func NewAnalyzer(page browser.Page, provider llm.Provider, log *logging.Logger) *Analyzer {
	return &Analyzer{page: page, provider: provider, log: log}
}

// Analyze returns a best-effort classification of the current page.
// Extraction or validation failures degrade to the URL-keyword
// heuristic; Analyze never returns an error.
func (a *Analyzer) Analyze(ctx context.Context) Analysis {
	content, err := a.page.ExtractText(browser.DefaultContentTokens)
	if err != nil {
		return a.heuristic(fmt.Sprintf("page content unavailable: %v", err))
	}

	prompt := fmt.Sprintf("Current URL: %s\n\nPage content:\n%s", a.page.URL(), content)
	response, err := a.provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(analyzerSystemPrompt),
		types.NewUserMessage(prompt),
	})
	if err != nil {
		return a.heuristic(fmt.Sprintf("model extraction failed: %v", err))
	}

	var result PageAuth
	if err := json.Unmarshal([]byte(parser.StripFences(response.Content)), &result); err != nil {
		return a.heuristic(fmt.Sprintf("unparseable extraction response: %v", err))
	}
	if !validStrategy(result.RecommendedStrategy) {
		return a.heuristic(fmt.Sprintf("invalid recommendedStrategy %q", result.RecommendedStrategy))
	}

	return Analysis{Source: SourceModel, PageAuth: result}
}

// heuristic classifies by URL keywords when model extraction is
// unavailable.
func (a *Analyzer) heuristic(reason string) Analysis {
	url := a.page.URL()
	requiresAuth := authKeywords.MatchString(url)

	if a.log != nil {
		a.log.Warnf("auth analysis fell back to URL heuristic (%s): url=%s requiresAuth=%v", reason, url, requiresAuth)
	}

	return Analysis{
		Source: SourceHeuristic,
		PageAuth: PageAuth{
			RequiresAuth:        requiresAuth,
			RecommendedStrategy: StrategyUnknown,
			Summary:             fmt.Sprintf("heuristic fallback (%s): classified by URL keywords", reason),
		},
	}
}
