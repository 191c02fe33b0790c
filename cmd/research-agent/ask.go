// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/jwmatthews/deep-research-agent/internal/agent"
	"github.com/jwmatthews/deep-research-agent/internal/llm"
	"github.com/jwmatthews/deep-research-agent/internal/session"
	"github.com/jwmatthews/deep-research-agent/internal/websearch"
	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Research a migration question and print the report",
	Long: `Ask runs the full research workflow for a migration question and prints
the synthesized report. Progress is streamed to stderr as the workflow
advances; interrupt with Ctrl-C to abort the in-flight research.

Examples:
  research-agent ask "flask 2 to flask 3"
  research-agent ask --format json "django 3 to django 4"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("format", "text", "report output format: text, json, or yaml")
	askCmd.Flags().Bool("quiet", false, "suppress progress output")
	askCmd.Flags().Bool("no-save", false, "do not record this run in the session history")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	format, _ := cmd.Flags().GetString("format")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noSave, _ := cmd.Flags().GetBool("no-save")

	cfg := loadAgentConfig()
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: set .secrets/anthropic-api-key or RESEARCH_AGENT_AI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("no Tavily API key: set .secrets/tavily-api-key or RESEARCH_AGENT_SEARCH_API_KEY")
	}

	progress := io.Writer(os.Stderr)
	if quiet {
		progress = io.Discard
	}

	opts := []agent.Option{agent.WithProgress(progress)}
	if !cfg.Store.Disabled && !noSave {
		store, err := session.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer store.Close()
		opts = append(opts, agent.WithStore(store))
	}

	a := agent.New(cfg, llm.NewClaudeBackend(cfg.AI), websearch.NewTavilyBackend(cfg.Search), opts...)

	var lastPhase types.Phase
	report, err := a.ExecuteQueryStream(cmd.Context(), query, func(s types.ResearchState) {
		if s.Phase != lastPhase {
			fmt.Fprintf(progress, "-> %s\n", s.Phase)
			lastPhase = s.Phase
		}
	})
	if err != nil {
		if errors.Is(err, agent.ErrCancelled) {
			return fmt.Errorf("aborted: %w", err)
		}
		return fmt.Errorf("research failed: %w", err)
	}

	return renderReport(os.Stdout, report, format)
}

// renderReport writes the report in the requested format.
func renderReport(w io.Writer, r *types.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		return yaml.NewEncoder(w).Encode(r)
	case "text":
		printTextReport(w, r)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use text, json, or yaml", format)
	}
}

func printTextReport(w io.Writer, r *types.Report) {
	fmt.Fprintf(w, "%s\n", r.Summary)

	if len(r.MigrationSteps) > 0 {
		fmt.Fprintf(w, "\nMigration steps:\n")
		for i, step := range r.MigrationSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	if len(r.BreakingChanges) > 0 {
		fmt.Fprintf(w, "\nBreaking changes:\n")
		for _, c := range r.BreakingChanges {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
	if len(r.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, e := range r.Examples {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	if len(r.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for _, s := range r.Sources {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
}
