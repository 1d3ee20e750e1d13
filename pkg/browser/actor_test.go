package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/types"
)

// fakePage records actions performed against it.
type fakePage struct {
	url     string
	content string

	clicks     []string
	fills      [][2]string
	presses    [][2]string
	navigates  []string
	waitCalls  int
	extractErr error
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
	return errors.New("network idle timeout") // always times out; must be tolerated
}

func (p *fakePage) ExtractText(maxTokens int) (string, error) {
	if p.extractErr != nil {
		return "", p.extractErr
	}
	return p.content, nil
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Title() (string, error) {
	return "Fake Page", nil
}

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []string
	calls     int
	err       error
}

func (m *scriptedProvider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	msg, err := m.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	ch := make(chan *llm.StreamChunk, 2)
	ch <- &llm.StreamChunk{Role: "assistant", Content: msg.Content}
	ch <- &llm.StreamChunk{Finished: true}
	close(ch)
	return ch, nil
}

func (m *scriptedProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.calls >= len(m.responses) {
		return nil, errors.New("scripted provider exhausted")
	}
	response := m.responses[m.calls]
	m.calls++
	return types.NewAssistantMessage(response), nil
}

func (m *scriptedProvider) GetModel() string {
	return "scripted-model"
}

func (m *scriptedProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Name: "scripted-model", Provider: "test"}
}

func TestActor_Click(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "Sign in"}
	provider := &scriptedProvider{responses: []string{`{"action":"click","selector":"#login"}`}}

	actor := NewActor(page, provider)
	err := actor.Act(context.Background(), "click the sign in button")
	require.NoError(t, err)

	assert.Equal(t, []string{"#login"}, page.clicks)
	assert.Equal(t, 1, page.waitCalls, "post-action wait must run even though it times out")
}

func TestActor_FillAndNavigate(t *testing.T) {
	page := &fakePage{url: "https://example.com/login", content: "Username Password"}
	provider := &scriptedProvider{responses: []string{
		`{"action":"fill","selector":"input[name=username]","value":"alice"}`,
		`{"action":"navigate","url":"https://example.com/home"}`,
	}}

	actor := NewActor(page, provider)

	require.NoError(t, actor.Act(context.Background(), "enter the username"))
	require.NoError(t, actor.Act(context.Background(), "go to the home page"))

	assert.Equal(t, [][2]string{{"input[name=username]", "alice"}}, page.fills)
	assert.Equal(t, []string{"https://example.com/home"}, page.navigates)
}

func TestActor_FencedResponse(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "content"}
	provider := &scriptedProvider{responses: []string{"```json\n{\"action\":\"click\",\"selector\":\".btn\"}\n```"}}

	actor := NewActor(page, provider)
	require.NoError(t, actor.Act(context.Background(), "click the button"))
	assert.Equal(t, []string{".btn"}, page.clicks)
}

func TestActor_UnparseableResponse(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "content"}
	provider := &scriptedProvider{responses: []string{"I would click the button for you"}}

	actor := NewActor(page, provider)
	err := actor.Act(context.Background(), "click the button")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable action response")
}

func TestActor_NoApplicableAction(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "content"}
	provider := &scriptedProvider{responses: []string{`{"action":"none"}`}}

	actor := NewActor(page, provider)
	err := actor.Act(context.Background(), "click the missing button")
	require.Error(t, err)
	assert.Empty(t, page.clicks)
}

func TestActor_ProviderFailure(t *testing.T) {
	page := &fakePage{url: "https://example.com", content: "content"}
	provider := &scriptedProvider{err: errors.New("rate limited")}

	actor := NewActor(page, provider)
	err := actor.Act(context.Background(), "click something")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action planning failed")
}
