// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-agent CLI, a tool
// that answers software-migration questions by driving a fixed
// research workflow over LLM and web-search collaborators.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwmatthews/deep-research-agent/internal/secrets"
	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-agent CLI.
var rootCmd = &cobra.Command{
	Use:   "research-agent",
	Short: "Answer software-migration questions with automated web research",
	Long: `research-agent answers questions like "flask 2 to flask 3" by running a
fixed research workflow: refine the question into a search query, search the
web, filter the hits, analyze the most relevant sources, and synthesize a
structured migration report.

API keys are read from .secrets/anthropic-api-key and .secrets/tavily-api-key,
from the config file, or from RESEARCH_AGENT_* environment variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-agent.yaml or ~/.config/research-agent/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-agent"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_AGENT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadAgentConfig assembles the typed config from viper and secrets.
// Secrets fill API keys only when the config and environment left them
// empty.
func loadAgentConfig() types.AgentConfig {
	cfg := types.AgentConfig{
		AI: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("ai.timeout"),
				UserAgent: viper.GetString("ai.user_agent"),
			},
			Model:      viper.GetString("ai.model"),
			APIKey:     viper.GetString("ai.api_key"),
			MaxTokens:  viper.GetInt("ai.max_tokens"),
			MaxRetries: viper.GetInt("ai.max_retries"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			APIKey:     viper.GetString("search.api_key"),
			MaxResults: viper.GetInt("search.max_results"),
		},
		Workflow: types.WorkflowConfig{
			MaxSearchRetries: viper.GetInt("workflow.max_search_retries"),
			MaxAnalyzedHits:  viper.GetInt("workflow.max_analyzed_hits"),
			MaxReportSources: viper.GetInt("workflow.max_report_sources"),
			CallTimeout:      viper.GetDuration("workflow.call_timeout"),
		},
		Store: types.StoreConfig{
			DataDir:  viper.GetString("store.data_dir"),
			Disabled: viper.GetBool("store.disabled"),
		},
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = loadedSecrets["anthropic-api-key"]
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = loadedSecrets["tavily-api-key"]
	}

	return cfg.ApplyDefaults()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
