// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-agent/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the LLM collaborator.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the response size per call (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts on rate-limited
	// calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the search collaborator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of hits requested per search
	// (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WorkflowConfig holds tuning knobs for the research workflow itself.
type WorkflowConfig struct {
	// MaxSearchRetries bounds the search-insufficiency retry loop
	// (default 2).
	MaxSearchRetries int `json:"max_search_retries" yaml:"max_search_retries"`

	// MaxAnalyzedHits caps how many filtered hits the analyze node
	// examines (default 3).
	MaxAnalyzedHits int `json:"max_analyzed_hits" yaml:"max_analyzed_hits"`

	// MaxReportSources caps how many source URLs the report cites
	// (default 5).
	MaxReportSources int `json:"max_report_sources" yaml:"max_report_sources"`

	// CallTimeout, when positive, bounds each individual collaborator
	// call. Zero means no per-call timeout.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout"`
}

// StoreConfig holds settings for the session history store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database
	// (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Disabled turns session persistence off entirely.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// AgentConfig groups all settings for the research agent.
type AgentConfig struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Workflow WorkflowConfig `json:"workflow" yaml:"workflow"`
	Store    StoreConfig    `json:"store" yaml:"store"`
}

// Workflow defaults applied by ApplyDefaults.
const (
	DefaultMaxSearchRetries = 2
	DefaultMaxAnalyzedHits  = 3
	DefaultMaxReportSources = 5
)

// ApplyDefaults fills zero-valued fields with production defaults and
// returns the completed config.
func (c AgentConfig) ApplyDefaults() AgentConfig {
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.AI.UserAgent == "" {
		c.AI.UserAgent = "research-agent/0.1"
	}
	if c.AI.Model == "" {
		c.AI.Model = "claude-sonnet-4-5-20250929"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 4096
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = 3
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 30 * time.Second
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = c.AI.UserAgent
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Workflow.MaxSearchRetries <= 0 {
		c.Workflow.MaxSearchRetries = DefaultMaxSearchRetries
	}
	if c.Workflow.MaxAnalyzedHits <= 0 {
		c.Workflow.MaxAnalyzedHits = DefaultMaxAnalyzedHits
	}
	if c.Workflow.MaxReportSources <= 0 {
		c.Workflow.MaxReportSources = DefaultMaxReportSources
	}
	if c.Store.DataDir == "" {
		c.Store.DataDir = "data"
	}
	return c
}
