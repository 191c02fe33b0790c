// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nodes

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

// refinePromptTmpl turns the user's migration question into a
// search-oriented phrase.
var refinePromptTmpl = template.Must(template.New("refine").Parse(`You are a research assistant specializing in software migrations. Rewrite the user's question as a concise web-search query that will surface official migration guides, changelogs, and upgrade documentation.

Respond with the search query only, on a single line, with no quotes and no commentary.

Question:
{{.Query}}
`))

// filterPromptTmpl asks the model to select the most relevant hits by
// index.
var filterPromptTmpl = template.Must(template.New("filter").Parse(`You are ranking web search results for relevance to a software migration question.

Question: {{.Query}}

Results:
{{range $i, $h := .Hits}}[{{$i}}] {{$h.Title}} ({{$h.URL}})
    {{$h.Snippet}}
{{end}}
Respond with a JSON array of the indices of the relevant results, most relevant first, e.g. [2, 0, 5]. Do not include any text outside the JSON array.
`))

// analyzePromptTmpl extracts migration findings from a single hit.
var analyzePromptTmpl = template.Must(template.New("analyze").Parse(`You are analyzing one source document for a software migration question.

Question: {{.Query}}

Source: {{.Title}} ({{.URL}})

{{.Content}}

Summarize the migration-relevant findings in this source: required steps, API changes, breaking changes, and version constraints. Respond with plain prose, no preamble.
`))

// synthesizePromptTmpl combines all analysis notes into a structured
// report.
var synthesizePromptTmpl = template.Must(template.New("synthesize").Parse(`You are writing the final answer to a software migration question from analyst notes.

Question: {{.Query}}

Notes:
{{.Notes}}

Respond with a JSON object with these fields:
- "summary": a prose overview of the migration
- "migration_steps": an ordered array of concrete steps
- "breaking_changes": an array of breaking changes to watch for
- "examples": an array of code or command examples (may be empty)

Do not include any text outside the JSON object.
`))

// maxSnippetLen bounds how much of each hit's content the filter
// prompt quotes.
const maxSnippetLen = 200

func renderRefinePrompt(query string) (string, error) {
	return render(refinePromptTmpl, struct{ Query string }{Query: query})
}

type filterHit struct {
	Title   string
	URL     string
	Snippet string
}

func renderFilterPrompt(query string, hits []types.SearchHit) (string, error) {
	view := make([]filterHit, len(hits))
	for i, h := range hits {
		view[i] = filterHit{Title: h.Title, URL: h.URL, Snippet: snippet(h.Content)}
	}
	return render(filterPromptTmpl, struct {
		Query string
		Hits  []filterHit
	}{Query: query, Hits: view})
}

func renderAnalyzePrompt(query string, hit types.SearchHit) (string, error) {
	return render(analyzePromptTmpl, struct {
		Query, Title, URL, Content string
	}{Query: query, Title: hit.Title, URL: hit.URL, Content: hit.Content})
}

func renderSynthesizePrompt(query string, notes []types.AnalysisNote) (string, error) {
	var b strings.Builder
	for _, note := range notes {
		fmt.Fprintf(&b, "## %s (confidence %.2f)\n%s\n\n", note.Label, note.Confidence, note.Findings)
	}
	return render(synthesizePromptTmpl, struct {
		Query, Notes string
	}{Query: query, Notes: b.String()})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// snippet truncates content for prompt inclusion.
func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= maxSnippetLen {
		return content
	}
	return content[:maxSnippetLen] + "..."
}
