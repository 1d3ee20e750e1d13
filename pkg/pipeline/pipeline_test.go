package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpkit/mcpkit/pkg/contexts"
	"github.com/mcpkit/mcpkit/pkg/discovery"
	"github.com/mcpkit/mcpkit/pkg/logging"
)

type failingProvisioner struct{}

func (failingProvisioner) NewContext(ctx context.Context, domain string) (string, error) {
	return "", errors.New("disk full")
}

func TestSummarize(t *testing.T) {
	catalog := &discovery.Catalog{Actions: []discovery.Action{
		{
			Name:        "search_products",
			Description: "Search the product list",
			Parameters: []discovery.Parameter{
				{Name: "query", Type: discovery.ParamString},
				{Name: "limit", Type: discovery.ParamNumber},
			},
			Steps: []string{"Search for {query}"},
		},
		{
			Name:        "list_orders",
			Description: "List recent orders",
			Steps:       []string{"Open the orders page"},
		},
	}}

	lines := Summarize(catalog)
	require.Len(t, lines, 2)
	assert.Equal(t, "search_products(query, limit) - Search the product list", lines[0])
	assert.Equal(t, "list_orders() - List recent orders", lines[1])
}

func TestSummarize_NilCatalog(t *testing.T) {
	assert.Nil(t, Summarize(nil))
}

func TestResolveProfileDir_UsesProvisionedContext(t *testing.T) {
	baseDir := t.TempDir()
	provisioner := &contexts.ProfileProvisioner{BaseDir: baseDir}

	store, err := contexts.NewStore(filepath.Join(t.TempDir(), "contexts.json"), provisioner)
	require.NoError(t, err)

	c := &Coordinator{store: store, provisioner: provisioner, log: logging.NewDiscard()}

	dir := c.resolveProfileDir(context.Background(), "example.com")
	require.NotEmpty(t, dir)
	assert.Equal(t, baseDir, filepath.Dir(dir))

	// Same domain resolves to the same profile directory.
	assert.Equal(t, dir, c.resolveProfileDir(context.Background(), "example.com"))
}

func TestResolveProfileDir_ProvisioningFailureDegradesToEphemeral(t *testing.T) {
	store, err := contexts.NewStore(filepath.Join(t.TempDir(), "contexts.json"), failingProvisioner{})
	require.NoError(t, err)

	c := &Coordinator{
		store:       store,
		provisioner: &contexts.ProfileProvisioner{BaseDir: t.TempDir()},
		log:         logging.NewDiscard(),
	}

	assert.Empty(t, c.resolveProfileDir(context.Background(), "example.com"))
}

func TestResolveProfileDir_NoStoreConfigured(t *testing.T) {
	c := &Coordinator{log: logging.NewDiscard()}
	assert.Empty(t, c.resolveProfileDir(context.Background(), "example.com"))
}
