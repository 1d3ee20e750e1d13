package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcpkit/mcpkit/pkg/pipeline"
)

// catalogWriter persists the validated catalog as pretty-printed JSON
// and prints a per-action summary. This is the hand-off point for an
// MCP server generator, which consumes the same file.
type catalogWriter struct {
	// path overrides the default <domain>.catalog.json location.
	path string
}

func (g *catalogWriter) Generate(ctx context.Context, result *pipeline.Result) error {
	path := g.path
	if path == "" {
		path = result.Domain + ".catalog.json"
	}

	raw, err := json.MarshalIndent(result.Catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	raw = append(raw, '\n')

	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Discovered %d actions for %s:", len(result.Catalog.Actions), result.Domain)))
	for _, line := range pipeline.Summarize(result.Catalog) {
		fmt.Printf("  %s\n", line)
	}

	for _, warning := range result.Warnings {
		fmt.Println(noticeStyle.Render(fmt.Sprintf("Warning: %s", warning)))
	}

	fmt.Println()
	fmt.Println(successStyle.Render(fmt.Sprintf("Catalog written to %s", path)))
	return nil
}
