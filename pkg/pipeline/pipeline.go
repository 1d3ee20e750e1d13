// Package pipeline coordinates one generation run end to end: URL
// normalization, browser context resolution, session startup,
// authentication, discovery, and catalog hand-off to the generator.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcpkit/mcpkit/pkg/auth"
	"github.com/mcpkit/mcpkit/pkg/browser"
	"github.com/mcpkit/mcpkit/pkg/contexts"
	"github.com/mcpkit/mcpkit/pkg/discovery"
	"github.com/mcpkit/mcpkit/pkg/llm"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/siteurl"
	"github.com/mcpkit/mcpkit/pkg/vault"
)

// Generator consumes the validated catalog. mcpkit itself writes the
// catalog to disk; a server generator would build an MCP server from it.
type Generator interface {
	Generate(ctx context.Context, result *Result) error
}

// Result is the outcome of a completed run.
type Result struct {
	// TargetURL is the normalized website address.
	TargetURL string

	// Domain is the registrable domain used as context and credential key.
	Domain string

	// AuthStatus records how authentication concluded.
	AuthStatus auth.Status

	// Catalog is the validated action catalog.
	Catalog *discovery.Catalog

	// Warnings are non-fatal catalog quality findings.
	Warnings []string
}

// Options configures one run.
type Options struct {
	// TargetURL is the raw user-supplied website reference.
	TargetURL string

	// SkipAuth bypasses the authentication flow entirely. Discovery runs
	// against whatever the site shows an anonymous visitor.
	SkipAuth bool

	// Headless controls browser visibility. Headed is the default so the
	// operator can take over during manual login.
	Headless bool
}

// Coordinator owns the dependencies shared across runs.
type Coordinator struct {
	provider    llm.Provider
	store       *contexts.Store
	provisioner *contexts.ProfileProvisioner
	vault       vault.Vault
	operator    auth.Operator
	generator   Generator
	log         *logging.Logger
}

// NewCoordinator creates a pipeline coordinator.
func NewCoordinator(provider llm.Provider, store *contexts.Store, provisioner *contexts.ProfileProvisioner, credVault vault.Vault, operator auth.Operator, generator Generator, log *logging.Logger) *Coordinator {
	return &Coordinator{
		provider:    provider,
		store:       store,
		provisioner: provisioner,
		vault:       credVault,
		operator:    operator,
		generator:   generator,
		log:         log,
	}
}

// Run executes one generation pass against the target site. The browser
// is shut down on every exit path.
func (c *Coordinator) Run(ctx context.Context, opts Options) (*Result, error) {
	target, err := siteurl.Normalize(opts.TargetURL)
	if err != nil {
		return nil, err
	}
	domain := siteurl.RegistrableDomain(target)
	c.log.Infof("starting run: target=%s domain=%s skipAuth=%v headless=%v", target, domain, opts.SkipAuth, opts.Headless)

	profileDir := c.resolveProfileDir(ctx, domain)

	manager := browser.NewSessionManager()
	defer func() {
		if err := manager.Shutdown(); err != nil {
			c.log.Warnf("browser shutdown: %v", err)
		}
	}()

	if err := manager.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to start browser engine: %w", err)
	}

	session, err := manager.StartSession(domain, browser.SessionOptions{
		Headless:   opts.Headless,
		ProfileDir: profileDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	result := &Result{TargetURL: target.String(), Domain: domain}

	if opts.SkipAuth {
		if err := session.Navigate(target.String()); err != nil {
			return nil, fmt.Errorf("failed to navigate to %s: %w", target, err)
		}
		result.AuthStatus = auth.StatusSkipped
		c.log.Infof("authentication bypassed by flag")
	} else {
		actor := browser.NewActor(session, c.provider)
		analyzer := auth.NewAnalyzer(session, c.provider, c.log)
		orchestrator := auth.NewOrchestrator(session, actor, analyzer, c.vault, c.operator, c.log, auth.Options{
			TargetURL: target.String(),
			Domain:    domain,
		})

		authResult, err := orchestrator.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("authentication failed: %w", err)
		}
		result.AuthStatus = authResult.Status
		c.log.Infof("authentication concluded: %s", authResult.Status)
	}

	discoverer := discovery.NewDiscoverer(session, c.provider, c.log, domain)
	catalog, warnings, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	result.Catalog = catalog
	result.Warnings = warnings

	for _, line := range Summarize(catalog) {
		c.log.Infof("discovered %s", line)
	}

	if c.generator != nil {
		if err := c.generator.Generate(ctx, result); err != nil {
			return nil, fmt.Errorf("generation failed: %w", err)
		}
	}

	return result, nil
}

// resolveProfileDir maps the domain to its persistent browser profile
// directory via the context store. Provisioning failure degrades to an
// ephemeral session: the run proceeds, login state just will not
// survive it.
func (c *Coordinator) resolveProfileDir(ctx context.Context, domain string) string {
	if c.store == nil || c.provisioner == nil {
		return ""
	}

	contextID, err := c.store.GetOrCreate(ctx, domain)
	if err != nil {
		if errors.Is(err, contexts.ErrProvisioningFailed) && contextID == "" {
			c.log.Warnf("context provisioning failed for %s, continuing without a persistent profile: %v", domain, err)
			return ""
		}
		// The identifier is usable even when persisting the mapping failed.
		c.log.Warnf("context mapping for %s not persisted: %v", domain, err)
	}

	dir, err := c.provisioner.ProfileDir(contextID)
	if err != nil {
		c.log.Warnf("could not resolve profile directory for context %s: %v", contextID, err)
		return ""
	}

	c.log.Infof("using browser context %s for %s", contextID, domain)
	return dir
}

// Summarize renders one line per catalog action for operator output and
// logs, e.g. "search_products(query) - Search the product list".
func Summarize(catalog *discovery.Catalog) []string {
	if catalog == nil {
		return nil
	}

	lines := make([]string, 0, len(catalog.Actions))
	for _, action := range catalog.Actions {
		params := make([]string, 0, len(action.Parameters))
		for _, p := range action.Parameters {
			params = append(params, p.Name)
		}
		lines = append(lines, fmt.Sprintf("%s(%s) - %s", action.Name, strings.Join(params, ", "), action.Description))
	}
	return lines
}
