// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research agent:
// the research state that flows through the workflow graph, the partial
// updates nodes produce, and the report delivered to callers.
package types

import "time"

// Phase is the control-flow marker carried in the research state. The
// router selects the next node from the phase a node leaves behind.
type Phase string

const (
	PhaseRefining     Phase = "refining"
	PhaseSearching    Phase = "searching"
	PhaseFiltering    Phase = "filtering"
	PhaseAnalyzing    Phase = "analyzing"
	PhaseSynthesizing Phase = "synthesizing"
	PhaseComplete     Phase = "complete"
	PhaseError        Phase = "error"
)

// Terminal reports whether p ends the workflow.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// SearchHit is one result returned by the search collaborator, coerced
// into typed form by the search node.
type SearchHit struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the source location of the hit.
	URL string `json:"url" yaml:"url"`

	// Content is the text snippet or extracted page content.
	Content string `json:"content" yaml:"content"`

	// Score is the provider relevance score, between 0.0 and 1.0.
	Score float64 `json:"score" yaml:"score"`

	// FoundAt records when the hit was discovered.
	FoundAt time.Time `json:"found_at" yaml:"found_at"`
}

// AnalysisNote holds the findings extracted from a single search hit.
type AnalysisNote struct {
	// Label identifies the analyzed source, normally the hit title.
	Label string `json:"label" yaml:"label"`

	// Findings is the free-text analysis returned by the model.
	Findings string `json:"findings" yaml:"findings"`

	// Confidence is inherited from the hit's relevance score, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Report is the final structured answer to a migration question.
type Report struct {
	// Summary is a prose overview of the migration.
	Summary string `json:"summary" yaml:"summary"`

	// MigrationSteps lists the ordered steps to perform.
	MigrationSteps []string `json:"migration_steps" yaml:"migration_steps"`

	// BreakingChanges lists API or behavior changes to watch for.
	BreakingChanges []string `json:"breaking_changes" yaml:"breaking_changes"`

	// Examples holds optional code or command examples.
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`

	// Sources lists the URLs the report was synthesized from.
	Sources []string `json:"sources" yaml:"sources"`
}

// Exchange is one entry in the conversation log: which node spoke and
// what it recorded. The log is append-only and exists for traceability.
type Exchange struct {
	Node    string    `json:"node" yaml:"node"`
	Content string    `json:"content" yaml:"content"`
	At      time.Time `json:"at" yaml:"at"`
}

// ResearchState is the single data object threaded through the workflow
// graph. It is immutable by convention: nodes receive a value copy and
// return an Update, which the engine folds in with Apply.
type ResearchState struct {
	// Query is the original user question. Set once at creation.
	Query string `json:"query" yaml:"query"`

	// RefinedQuery is the search-oriented phrase produced by the
	// refine node, possibly suffixed by the search node on retry.
	RefinedQuery string `json:"refined_query,omitempty" yaml:"refined_query,omitempty"`

	// RawResults are the hits returned by the search node.
	RawResults []SearchHit `json:"raw_results,omitempty" yaml:"raw_results,omitempty"`

	// FilteredResults is the subset of RawResults the filter node kept.
	FilteredResults []SearchHit `json:"filtered_results,omitempty" yaml:"filtered_results,omitempty"`

	// AnalysisNotes are the per-hit findings from the analyze node.
	AnalysisNotes []AnalysisNote `json:"analysis_notes,omitempty" yaml:"analysis_notes,omitempty"`

	// Report is the final output. Present exactly when Phase is complete.
	Report *Report `json:"report,omitempty" yaml:"report,omitempty"`

	// ConversationLog records what each node did, in execution order.
	ConversationLog []Exchange `json:"conversation_log,omitempty" yaml:"conversation_log,omitempty"`

	// Phase drives routing.
	Phase Phase `json:"phase" yaml:"phase"`

	// Failure describes why the run ended in PhaseError.
	Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`

	// Cancelled marks a failure caused by caller cancellation rather
	// than a collaborator problem.
	Cancelled bool `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`

	// RetryCount is the number of search retries consumed so far.
	RetryCount int `json:"retry_count" yaml:"retry_count"`
}

// NewResearchState builds the initial state for a query.
func NewResearchState(query string) ResearchState {
	return ResearchState{
		Query: query,
		Phase: PhaseRefining,
	}
}

// Update is a sparse set of state changes produced by one node
// execution. Nil pointer fields and nil slices mean "unchanged"; an
// empty Phase means "unchanged". LogEntries are always appended.
type Update struct {
	RefinedQuery    *string
	RawResults      []SearchHit
	FilteredResults []SearchHit
	AnalysisNotes   []AnalysisNote
	Report          *Report
	LogEntries      []Exchange
	Phase           Phase
	Failure         *string
	Cancelled       bool
	RetryCount      *int
}

// Apply folds an update into the state and returns the merged value.
// Scalars replace, collections are set when present, and the
// conversation log concatenates. RetryCount replaces rather than
// increments so that re-applying the same update is idempotent.
func (s ResearchState) Apply(u Update) ResearchState {
	next := s

	if u.RefinedQuery != nil {
		next.RefinedQuery = *u.RefinedQuery
	}
	if u.RawResults != nil {
		next.RawResults = u.RawResults
	}
	if u.FilteredResults != nil {
		next.FilteredResults = u.FilteredResults
	}
	if u.AnalysisNotes != nil {
		next.AnalysisNotes = u.AnalysisNotes
	}
	if u.Report != nil {
		next.Report = u.Report
	}
	if len(u.LogEntries) > 0 {
		log := make([]Exchange, 0, len(s.ConversationLog)+len(u.LogEntries))
		log = append(log, s.ConversationLog...)
		log = append(log, u.LogEntries...)
		next.ConversationLog = log
	}
	if u.Phase != "" {
		next.Phase = u.Phase
	}
	if u.Failure != nil {
		next.Failure = *u.Failure
	}
	if u.Cancelled {
		next.Cancelled = true
	}
	if u.RetryCount != nil {
		next.RetryCount = *u.RetryCount
	}

	return next
}
