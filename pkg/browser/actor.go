package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/llm/parser"
	"github.com/mcpkit/mcpkit/pkg/types"
)

// Page is the browser surface consumed by the actor and the higher
// pipeline layers. *Session implements it.
type Page interface {
	Navigate(url string) error
	Click(selector string) error
	Fill(selector, value string) error
	Press(selector, key string) error
	WaitForLoad(timeout time.Duration) error
	ExtractText(maxTokens int) (string, error)
	URL() string
	Title() (string, error)
}

// Actor executes natural-language page instructions. It asks the model
// to translate an instruction like "click the Sign in button in the
// top right" into one concrete action against the current page, then
// performs that action. Higher layers describe what should happen; the
// actor grounds it in the live DOM.
type Actor struct {
	page     Page
	provider llm.Provider
}

// NewActor creates an actor over the given page and provider.
func NewActor(page Page, provider llm.Provider) *Actor {
	return &Actor{page: page, provider: provider}
}

// pageAction is the model's answer: one concrete action to perform.
type pageAction struct {
	Action   string `json:"action"`
	Selector string `json:"selector,omitempty"`
	Value    string `json:"value,omitempty"`
	URL      string `json:"url,omitempty"`
	Key      string `json:"key,omitempty"`
}

const actorSystemPrompt = `You are controlling a web browser. Given the current page and an instruction, respond with exactly one JSON object describing the single concrete action to perform. No prose, no code fences.

Schema:
{"action": "click" | "fill" | "press" | "navigate", "selector": "<css selector>", "value": "<text for fill>", "key": "<key for press>", "url": "<url for navigate>"}

Choose the most specific CSS selector visible in the page content. If the instruction cannot be performed on this page, respond with {"action": "none"}.`

// Act performs one natural-language instruction against the page.
// After a successful action it waits briefly for the network to settle;
// that wait is best-effort and its timeout is swallowed.
func (a *Actor) Act(ctx context.Context, instruction string) error {
	content, err := a.page.ExtractText(DefaultContentTokens)
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	prompt := fmt.Sprintf("Current URL: %s\n\nPage content:\n%s\n\nInstruction: %s", a.page.URL(), content, instruction)

	response, err := a.provider.Complete(ctx, []*types.Message{
		types.NewSystemMessage(actorSystemPrompt),
		types.NewUserMessage(prompt),
	})
	if err != nil {
		return fmt.Errorf("action planning failed: %w", err)
	}

	var action pageAction
	if err := json.Unmarshal([]byte(parser.StripFences(response.Content)), &action); err != nil {
		return fmt.Errorf("unparseable action response: %w", err)
	}

	if err := a.perform(action, instruction); err != nil {
		return err
	}

	_ = a.page.WaitForLoad(5 * time.Second)
	return nil
}

// perform executes a single planned action.
func (a *Actor) perform(action pageAction, instruction string) error {
	switch strings.ToLower(action.Action) {
	case "click":
		return a.page.Click(action.Selector)
	case "fill":
		return a.page.Fill(action.Selector, action.Value)
	case "press":
		return a.page.Press(action.Selector, action.Key)
	case "navigate":
		return a.page.Navigate(action.URL)
	case "none":
		return fmt.Errorf("no applicable action for instruction %q", instruction)
	default:
		return fmt.Errorf("unknown action %q", action.Action)
	}
}
