package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/mcpkit/mcpkit/pkg/browser"
	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/llm/parser"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/types"
)

// ErrMalformedResponse indicates the agent's final message could not be
// parsed as JSON after fence stripping. No repair heuristics are
// attempted beyond that; a broken catalog must never reach the
// generator.
var ErrMalformedResponse = errors.New("malformed discovery response")

// DefaultMaxSteps caps the exploration budget. Every step is a metered
// model call, so exhaustion ends the run with a final catalog request
// rather than retrying indefinitely.
const DefaultMaxSteps = 20

const explorerSystemPrompt = `You are exploring a website to identify its most useful automatable actions.

Explore the entire site and identify the 5-10 most useful actions a user would want to automate. Prioritize data-retrieval and CRUD workflows (viewing lists, searching, creating or updating records) over navigation trivia.

At each step respond with exactly one JSON object, no prose and no code fences:
  {"action": "navigate", "url": "..."}
  {"action": "click", "selector": "<css selector>"}
  {"action": "fill", "selector": "<css selector>", "value": "..."}
  {"action": "press", "selector": "<css selector>", "key": "..."}

When you have seen enough, respond with the final catalog instead:
  {"actions": [{"name": "search_products", "description": "...", "parameters": [{"name": "query", "type": "string", "description": "...", "required": true}], "steps": ["Navigate to the search page", "Type {query} into the search box"], "extractionSchema": {"results": "list of matching products"}}]}

Action names must be unique lowercase tokens. Parameter types are "string", "number", or "boolean". Steps reference parameters with {name} placeholders.`

// Discoverer runs the exploration agent over one site.
type Discoverer struct {
	page     browser.Page
	provider llm.Provider
	log      *logging.Logger
	domain   string
	scope    []glob.Glob
	maxSteps int
}

// NewDiscoverer creates a discoverer scoped to the given domain. The
// agent is refused navigation to hosts outside the domain and its
// subdomains; exploration cost is metered and off-site pages yield no
// automatable actions anyway.
func NewDiscoverer(page browser.Page, provider llm.Provider, log *logging.Logger, domain string) *Discoverer {
	return &Discoverer{
		page:     page,
		provider: provider,
		log:      log,
		domain:   domain,
		scope: []glob.Glob{
			glob.MustCompile(domain),
			glob.MustCompile("*." + domain),
		},
		maxSteps: DefaultMaxSteps,
	}
}

// explorationStep is one decoded agent reply. A reply carrying Actions
// is the final catalog; otherwise Action names the page operation to
// perform.
type explorationStep struct {
	Action   string          `json:"action"`
	Selector string          `json:"selector"`
	Value    string          `json:"value"`
	URL      string          `json:"url"`
	Key      string          `json:"key"`
	Actions  json.RawMessage `json:"actions"`
}

// Discover explores the site and returns the validated action catalog
// together with data-quality warnings. Validation is all-or-nothing: a
// single malformed action rejects the whole catalog.
func (d *Discoverer) Discover(ctx context.Context) (*Catalog, []string, error) {
	messages := []*types.Message{
		types.NewSystemMessage(explorerSystemPrompt),
		types.NewUserMessage(fmt.Sprintf("Target site: %s. Begin exploring.", d.domain)),
	}

	for step := 0; step < d.maxSteps; step++ {
		observation, err := d.observe()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to observe page: %w", err)
		}
		messages = append(messages, types.NewUserMessage(observation))

		response, err := d.provider.Complete(ctx, messages)
		if err != nil {
			return nil, nil, fmt.Errorf("exploration step failed: %w", err)
		}
		messages = append(messages, types.NewAssistantMessage(response.Content))

		raw := parser.StripFences(response.Content)
		var decoded explorationStep
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			d.log.Warnf("unparseable exploration step %d, asking again: %v", step+1, err)
			messages = append(messages, types.NewUserMessage("That was not valid JSON. Respond with exactly one JSON object per the protocol."))
			continue
		}

		if len(decoded.Actions) > 0 {
			return d.finalize(raw)
		}

		d.execute(decoded, &messages)
	}

	// Budget exhausted: demand the catalog now.
	messages = append(messages, types.NewUserMessage("Step budget exhausted. Respond now with the final catalog JSON object only."))
	response, err := d.provider.Complete(ctx, messages)
	if err != nil {
		return nil, nil, fmt.Errorf("final catalog request failed: %w", err)
	}

	return d.finalize(parser.StripFences(response.Content))
}

// observe builds the model's view of the current page.
func (d *Discoverer) observe() (string, error) {
	content, err := d.page.ExtractText(browser.DefaultContentTokens)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Current URL: %s\n\nPage content:\n%s", d.page.URL(), content), nil
}

// execute performs one exploration step against the page. Failures are
// reported back to the agent as observations rather than ending the
// run; the agent routinely recovers by choosing a different element.
func (d *Discoverer) execute(step explorationStep, messages *[]*types.Message) {
	var err error

	switch strings.ToLower(step.Action) {
	case "navigate":
		if !d.inScope(step.URL) {
			d.log.Infof("refused off-domain navigation to %s", step.URL)
			*messages = append(*messages, types.NewUserMessage(fmt.Sprintf(
				"Navigation to %s refused: stay on %s and its subdomains.", step.URL, d.domain)))
			return
		}
		err = d.page.Navigate(step.URL)
	case "click":
		err = d.page.Click(step.Selector)
	case "fill":
		err = d.page.Fill(step.Selector, step.Value)
	case "press":
		err = d.page.Press(step.Selector, step.Key)
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	if err != nil {
		*messages = append(*messages, types.NewUserMessage(fmt.Sprintf("Action failed: %v. Choose a different step.", err)))
		return
	}

	// Settle before the next observation; timeout tolerated.
	_ = d.page.WaitForLoad(5 * time.Second)
}

// inScope reports whether rawURL points at the target domain or one of
// its subdomains.
func (d *Discoverer) inScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		// Relative URL; stays on the current site.
		return true
	}

	for _, g := range d.scope {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// finalize parses and validates the agent's final catalog payload.
func (d *Discoverer) finalize(raw string) (*Catalog, []string, error) {
	var catalog Catalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, nil, err
	}

	warnings := catalog.Warnings()
	for _, warning := range warnings {
		d.log.Warnf("catalog quality: %s", warning)
	}

	return &catalog, warnings, nil
}
