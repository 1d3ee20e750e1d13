// Package main provides the mcpkit command line tool. It explores a
// target website with an AI-driven browser session, resolves
// authentication, and emits a validated catalog of automatable actions
// for MCP server generation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcpkit/mcpkit/pkg/auth"
	"github.com/mcpkit/mcpkit/pkg/config"
	"github.com/mcpkit/mcpkit/pkg/contexts"
	"github.com/mcpkit/mcpkit/pkg/logging"
	"github.com/mcpkit/mcpkit/pkg/pipeline"
	"github.com/mcpkit/mcpkit/pkg/siteurl"
	"github.com/mcpkit/mcpkit/pkg/vault"
)

const (
	version      = "0.1.0"
	defaultModel = "openai/gpt-4o"
)

// Config holds the create command configuration.
type Config struct {
	TargetURL   string
	Model       string
	APIKey      string
	OutputPath  string
	SkipAuth    bool
	Headless    bool
	ShowVersion bool
}

func main() {
	// Subcommand dispatch: "contexts" manages stored browser contexts,
	// everything else is the generation flow.
	if len(os.Args) > 1 && os.Args[1] == "contexts" {
		if err := runContexts(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			os.Exit(1)
		}
		return
	}

	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("mcpkit v%s\n", version)
		return
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// parseFlags parses the create command flags.
func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.TargetURL, "url", "", "Target website (example.com, www.example.com, or https://example.com)")
	flag.StringVar(&cfg.Model, "model", "", fmt.Sprintf("Model spec as provider/model (default %s, or config file)", defaultModel))
	flag.StringVar(&cfg.APIKey, "api-key", "", "Provider API key (overrides environment and config file)")
	flag.StringVar(&cfg.OutputPath, "out", "", "Catalog output path (default <domain>.catalog.json)")
	flag.BoolVar(&cfg.SkipAuth, "skip-auth", false, "Skip authentication and explore anonymously")
	flag.BoolVar(&cfg.Headless, "headless", false, "Run the browser headless (disables manual login takeover)")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "mcpkit - Generate an MCP action catalog from a website\n\n")
		fmt.Fprintf(os.Stderr, "Usage: mcpkit [options]\n")
		fmt.Fprintf(os.Stderr, "       mcpkit contexts <list|delete> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY      API key for openai/ models\n")
		fmt.Fprintf(os.Stderr, "  ANTHROPIC_API_KEY   API key for anthropic/ models\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY      API key for google/ models\n")
		fmt.Fprintf(os.Stderr, "  XAI_API_KEY         API key for xai/ models\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mcpkit -url example.com\n")
		fmt.Fprintf(os.Stderr, "  mcpkit -url https://app.example.com -model anthropic/claude-sonnet-4-5\n")
		fmt.Fprintf(os.Stderr, "  mcpkit -url example.com -skip-auth -out example.json\n")
		fmt.Fprintf(os.Stderr, "  mcpkit contexts list\n")
		fmt.Fprintf(os.Stderr, "  mcpkit contexts delete -domain example.com\n")
	}

	flag.Parse()
	return cfg
}

// validate checks the configuration before any browser work begins.
func (c *Config) validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("a target website is required (use -url)")
	}
	if !siteurl.IsValid(c.TargetURL) {
		_, err := siteurl.Normalize(c.TargetURL)
		return err
	}
	return nil
}

// resolveModel applies flag > config file > built-in default precedence.
func (c *Config) resolveModel() string {
	if c.Model != "" {
		return c.Model
	}
	if cfg, err := config.LoadFile(""); err == nil && cfg.Model != "" {
		return cfg.Model
	}
	return defaultModel
}

// run executes the generation flow.
func run(ctx context.Context, cfg *Config) error {
	model := cfg.resolveModel()

	provider, err := config.BuildProvider(model, cfg.APIKey)
	if err != nil {
		return err
	}

	log, logErr := logging.NewLogger("pipeline")
	if logErr != nil {
		fmt.Fprintln(os.Stderr, dimStyle.Render("File logging unavailable, continuing with stderr."))
	}
	defer log.Close()

	provisioner := &contexts.ProfileProvisioner{}
	store, err := contexts.NewStore("", provisioner)
	if err != nil {
		return err
	}

	coordinator := pipeline.NewCoordinator(
		provider,
		store,
		provisioner,
		vault.NewFileVault(""),
		newConsoleOperator(),
		&catalogWriter{path: cfg.OutputPath},
		log,
	)

	fmt.Println(titleStyle.Render(fmt.Sprintf("mcpkit v%s", version)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Target: %s", cfg.TargetURL)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Model:  %s", model)))
	if log.LogPath() != "" {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Log:    %s", log.LogPath())))
	}
	fmt.Println()

	result, err := coordinator.Run(ctx, pipeline.Options{
		TargetURL: cfg.TargetURL,
		SkipAuth:  cfg.SkipAuth,
		Headless:  cfg.Headless,
	})
	if err != nil {
		return diagnose(err)
	}

	if result.AuthStatus == auth.StatusSkipped && !cfg.SkipAuth {
		fmt.Println(dimStyle.Render("Proceeded without authentication; the catalog reflects the public site only."))
	}
	return nil
}

// diagnose maps pipeline failures to single-line operator guidance.
func diagnose(err error) error {
	switch {
	case errors.Is(err, siteurl.ErrInvalidURL):
		return err
	case errors.Is(err, auth.ErrAuthenticationAborted):
		return fmt.Errorf("aborted at your request; no catalog was generated")
	case errors.Is(err, auth.ErrAuthenticationIncomplete):
		return fmt.Errorf("login could not be verified; re-run and complete sign-in, or use -skip-auth: %w", err)
	default:
		return err
	}
}

// runContexts handles the contexts management subcommand.
func runContexts(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mcpkit contexts <list|delete>")
	}

	store, err := contexts.NewStore("", &contexts.ProfileProvisioner{})
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		domains := store.List()
		if len(domains) == 0 {
			fmt.Println(dimStyle.Render("No stored browser contexts."))
			return nil
		}
		fmt.Println(titleStyle.Render("Stored browser contexts:"))
		for _, domain := range domains {
			id, _ := store.Get(domain)
			fmt.Printf("  %s  %s\n", domain, dimStyle.Render(id))
		}
		return nil

	case "delete":
		fs := flag.NewFlagSet("contexts delete", flag.ExitOnError)
		domain := fs.String("domain", "", "Domain whose context mapping to remove")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *domain == "" {
			return fmt.Errorf("a domain is required (use -domain)")
		}

		existed, err := store.Delete(*domain)
		if err != nil {
			return err
		}
		if !existed {
			fmt.Println(dimStyle.Render(fmt.Sprintf("No context stored for %s.", *domain)))
			return nil
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Removed context mapping for %s.", *domain)))
		return nil

	default:
		return fmt.Errorf("unknown contexts command %q (expected list or delete)", args[0])
	}
}
