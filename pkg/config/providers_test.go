package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelSpec_Recognized(t *testing.T) {
	tests := []struct {
		spec     string
		provider string
		model    string
		keyEnv   string
	}{
		{"openai/gpt-4o", "openai", "gpt-4o", "OPENAI_API_KEY"},
		{"anthropic/claude-sonnet-4.5", "anthropic", "claude-sonnet-4.5", "ANTHROPIC_API_KEY"},
		{"google/gemini-2.5-pro", "google", "gemini-2.5-pro", "GEMINI_API_KEY"},
		{"xai/grok-4", "xai", "grok-4", "XAI_API_KEY"},
		{"OpenAI/gpt-4o", "openai", "gpt-4o", "OPENAI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParseModelSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, spec.Provider)
			assert.Equal(t, tt.model, spec.Model)
			assert.Equal(t, tt.keyEnv, spec.KeyEnv)
			assert.NotEmpty(t, spec.BaseURL)
		})
	}
}

func TestParseModelSpec_Unsupported(t *testing.T) {
	inputs := []string{
		"mistral/mistral-large",
		"gpt-4o",
		"",
		"openai/",
		"/gpt-4o",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseModelSpec(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedProvider))
		})
	}
}

func TestParseModelSpec_ModelWithSlashes(t *testing.T) {
	spec, err := ParseModelSpec("openai/ft:gpt-4o/custom")
	require.NoError(t, err)
	assert.Equal(t, "ft:gpt-4o/custom", spec.Model)
}

func TestBuildProvider_UnsupportedFailsBeforeKeyResolution(t *testing.T) {
	_, err := BuildProvider("mistral/mistral-large", "some-key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestBuildProvider_Recognized(t *testing.T) {
	provider, err := BuildProvider("xai/grok-4", "test-key")
	require.NoError(t, err)
	assert.Equal(t, "grok-4", provider.GetModel())
	assert.Equal(t, "xai", provider.GetModelInfo().Provider)
}
