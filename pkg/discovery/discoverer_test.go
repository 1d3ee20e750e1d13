package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/types"
)

// fakePage records operations performed by the exploration agent.
type fakePage struct {
	url     string
	content string

	navigates []string
	clicks    []string
	fills     [][2]string
	presses   [][2]string
	waitCalls int
}

func (p *fakePage) Navigate(url string) error {
	p.navigates = append(p.navigates, url)
	p.url = url
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakePage) Fill(selector, value string) error {
	p.fills = append(p.fills, [2]string{selector, value})
	return nil
}

func (p *fakePage) Press(selector, key string) error {
	p.presses = append(p.presses, [2]string{selector, key})
	return nil
}

func (p *fakePage) WaitForLoad(timeout time.Duration) error {
	p.waitCalls++
	return nil
}

func (p *fakePage) ExtractText(maxTokens int) (string, error) {
	return p.content, nil
}

func (p *fakePage) URL() string            { return p.url }
func (p *fakePage) Title() (string, error) { return "Fake", nil }

// scriptedProvider returns canned responses in order, repeating the
// last one when the script runs out.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (s *scriptedProvider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	return nil, errors.New("not used in discovery tests")
}

func (s *scriptedProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return types.NewAssistantMessage(s.responses[idx]), nil
}

func (s *scriptedProvider) GetModel() string { return "scripted" }
func (s *scriptedProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Name: "scripted", Provider: "test"}
}

const finalCatalogJSON = `{"actions": [{"name": "search_products", "description": "Search the product list", "parameters": [{"name": "query", "type": "string", "required": true}], "steps": ["Navigate to the search page", "Type {query} into the search box"]}]}`

func newTestDiscoverer(page *fakePage, provider llm.Provider) *Discoverer {
	return NewDiscoverer(page, provider, logging.NewDiscard(), "example.com")
}

func TestDiscoverer_ExploresThenEmitsCatalog(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "Products | Orders | Settings"}
	provider := &scriptedProvider{responses: []string{
		`{"action": "click", "selector": "a.products"}`,
		`{"action": "fill", "selector": "input.search", "value": "widgets"}`,
		`{"action": "press", "selector": "input.search", "key": "Enter"}`,
		finalCatalogJSON,
	}}

	catalog, warnings, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, catalog.Actions, 1)
	assert.Equal(t, "search_products", catalog.Actions[0].Name)
	assert.Empty(t, warnings)

	assert.Equal(t, []string{"a.products"}, page.clicks)
	assert.Equal(t, [][2]string{{"input.search", "widgets"}}, page.fills)
	assert.Equal(t, [][2]string{{"input.search", "Enter"}}, page.presses)
}

func TestDiscoverer_FencedAndBareCatalogsAreEquivalent(t *testing.T) {
	for _, response := range []string{
		finalCatalogJSON,
		"```json\n" + finalCatalogJSON + "\n```",
	} {
		page := &fakePage{url: "https://example.com", content: "home"}
		provider := &scriptedProvider{responses: []string{response}}

		catalog, _, err := newTestDiscoverer(page, provider).Discover(context.Background())
		require.NoError(t, err)
		require.Len(t, catalog.Actions, 1)
		assert.Equal(t, "search_products", catalog.Actions[0].Name)
	}
}

func TestDiscoverer_OffDomainNavigationRefused(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		`{"action": "navigate", "url": "https://evil.example.org/phish"}`,
		`{"action": "navigate", "url": "https://shop.example.com/products"}`,
		finalCatalogJSON,
	}}

	_, _, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.NoError(t, err)

	// Only the subdomain navigation lands; the off-domain one is refused.
	assert.Equal(t, []string{"https://shop.example.com/products"}, page.navigates)
}

func TestDiscoverer_RelativeNavigationAllowed(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		`{"action": "navigate", "url": "/orders"}`,
		finalCatalogJSON,
	}}

	_, _, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/orders"}, page.navigates)
}

func TestDiscoverer_UnparseableStepGetsCorrection(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		"I think I should click the products link first.",
		finalCatalogJSON,
	}}

	catalog, _, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Actions, 1)
	assert.Equal(t, 2, provider.calls)
}

func TestDiscoverer_MalformedFinalCatalog(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	// Every scripted reply is prose, so the run exhausts its budget and
	// the forced final catalog request also comes back unparseable.
	provider := &scriptedProvider{responses: []string{"not json, ever"}}

	discoverer := newTestDiscoverer(page, provider)
	discoverer.maxSteps = 2

	catalog, _, err := discoverer.Discover(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Nil(t, catalog)
}

func TestDiscoverer_InvalidCatalogRejectedEntirely(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		`{"actions": [{"name": "good_action", "description": "ok", "steps": ["Do it"]}, {"name": "bad_action", "steps": ["No description"]}]}`,
	}}

	catalog, _, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.Error(t, err)

	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "actions[1].description", schemaErr.Path)
	assert.Nil(t, catalog, "no partial catalog survives validation")
}

func TestDiscoverer_PlaceholderWarningsSurfaced(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		`{"actions": [{"name": "lookup_order", "description": "look up an order", "steps": ["Type {order_id} into the lookup box"]}]}`,
	}}

	catalog, warnings, err := newTestDiscoverer(page, provider).Discover(context.Background())
	require.NoError(t, err, "placeholder defects warn, they do not fail")
	require.NotNil(t, catalog)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "order_id")
}

func TestDiscoverer_BudgetExhaustionForcesCatalogRequest(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "home"}
	provider := &scriptedProvider{responses: []string{
		`{"action": "click", "selector": "a"}`,
		`{"action": "click", "selector": "b"}`,
		finalCatalogJSON,
	}}

	discoverer := newTestDiscoverer(page, provider)
	discoverer.maxSteps = 2

	catalog, _, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Actions, 1)
	// Two exploration steps plus the forced final request.
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, []string{"a", "b"}, page.clicks)
}
