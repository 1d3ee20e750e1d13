package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mcpkit/mcpkit/pkg/llm/openai"
)

// ErrUnsupportedProvider indicates a model spec with an unrecognized
// provider prefix. This fails fast at configuration time, before any
// browser or session work begins.
var ErrUnsupportedProvider = errors.New("unsupported model provider")

// providerInfo describes a recognized provider family: the
// OpenAI-compatible endpoint to call and the environment variable its
// API key is conventionally stored in.
type providerInfo struct {
	baseURL string
	keyEnv  string
}

// Recognized provider prefixes. All four expose OpenAI-compatible chat
// completion endpoints.
var providers = map[string]providerInfo{
	"openai":    {baseURL: openai.DefaultBaseURL, keyEnv: "OPENAI_API_KEY"},
	"anthropic": {baseURL: "https://api.anthropic.com/v1", keyEnv: "ANTHROPIC_API_KEY"},
	"google":    {baseURL: "https://generativelanguage.googleapis.com/v1beta/openai", keyEnv: "GEMINI_API_KEY"},
	"xai":       {baseURL: "https://api.x.ai/v1", keyEnv: "XAI_API_KEY"},
}

// ModelSpec is a resolved "provider/model" reference.
type ModelSpec struct {
	// Provider is the provider family ("openai", "anthropic", ...).
	Provider string

	// Model is the provider-native model name ("gpt-4o").
	Model string

	// BaseURL is the chat completion endpoint for the provider.
	BaseURL string

	// KeyEnv is the environment variable holding the provider's API key.
	KeyEnv string
}

// ParseModelSpec resolves a "provider/model" string. Unrecognized
// prefixes return ErrUnsupportedProvider listing the accepted ones.
func ParseModelSpec(spec string) (*ModelSpec, error) {
	prefix, model, found := strings.Cut(spec, "/")
	if !found || prefix == "" || model == "" {
		return nil, fmt.Errorf("%w: %q (expected provider/model, e.g. openai/gpt-4o)", ErrUnsupportedProvider, spec)
	}

	prefix = strings.ToLower(prefix)
	info, recognized := providers[prefix]
	if !recognized {
		return nil, fmt.Errorf("%w: %q (recognized prefixes: openai/, anthropic/, google/, xai/)", ErrUnsupportedProvider, prefix)
	}

	return &ModelSpec{
		Provider: prefix,
		Model:    model,
		BaseURL:  info.baseURL,
		KeyEnv:   info.keyEnv,
	}, nil
}

// BuildProvider creates an LLM provider for the given model spec,
// resolving the API key with CLI flag > environment > config file
// precedence.
func BuildProvider(modelSpec, cliAPIKey string) (*openai.Provider, error) {
	spec, err := ParseModelSpec(modelSpec)
	if err != nil {
		return nil, err
	}

	apiKey := cliAPIKey
	if apiKey == "" {
		apiKey = os.Getenv(spec.KeyEnv)
	}
	if apiKey == "" {
		if cfg, loadErr := LoadFile(""); loadErr == nil {
			apiKey = cfg.APIKeys[spec.Provider]
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key for %s is required (set %s, use -api-key, or configure ~/.mcpkit/config.yaml)", spec.Provider, spec.KeyEnv)
	}

	provider, err := openai.NewProvider(apiKey,
		openai.WithModel(spec.Model),
		openai.WithBaseURL(spec.BaseURL),
		openai.WithProviderName(spec.Provider),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}
