package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/url"
	"text/template"
	"time"

	"github.com/FranksOps/serpkeep/internal/analyzer"
	"github.com/FranksOps/serpkeep/internal/storage"
)

// Summary contains aggregated figures about the stored result listings.
type Summary struct {
	TotalResults int
	WithSnippet  int
	Queries      map[string]int
	Hosts        map[string]int
	Oldest       time.Time
	Newest       time.Time
	Terms        []analyzer.TermMatch
	Rows         []*storage.Result `json:"-"`
}

// GenerateSummary aggregates rows and runs term analysis over them.
func GenerateSummary(rows []*storage.Result, terms []string) Summary {
	s := Summary{
		Queries: make(map[string]int),
		Hosts:   make(map[string]int),
		Rows:    rows,
	}

	if len(rows) == 0 {
		return s
	}

	s.Oldest = rows[0].FetchedAt
	s.Newest = rows[0].FetchedAt

	for _, r := range rows {
		s.TotalResults++
		if r.Snippet != "" {
			s.WithSnippet++
		}
		s.Queries[r.Query]++
		if u, err := url.Parse(r.Link); err == nil && u.Host != "" {
			s.Hosts[u.Hostname()]++
		}

		if r.FetchedAt.Before(s.Oldest) {
			s.Oldest = r.FetchedAt
		}
		if r.FetchedAt.After(s.Newest) {
			s.Newest = r.FetchedAt
		}
	}

	s.Terms = analyzer.FindTermMatches(rows, terms)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `serpkeep Summary
----------------
Fetched:       {{.Oldest.Format "2006-01-02 15:04:05"}} - {{.Newest.Format "2006-01-02 15:04:05"}}
Results:       {{.TotalResults}}
With Snippet:  {{.WithSnippet}}

Queries:
{{- range $q, $count := .Queries}}
  {{$q}}: {{$count}}
{{- else}}
  None
{{- end}}

Hosts:
{{- range $host, $count := .Hosts}}
  {{$host}}: {{$count}}
{{- else}}
  None
{{- end}}
{{- if .Terms}}

Terms:
{{- range .Terms}}
  {{.Term}}: {{.Count}} in {{len .Links}} results
{{- end}}
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer. Scraped text is
// escaped.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>serpkeep Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>serpkeep Report</h1>
  <p><strong>Fetched:</strong> {{.Oldest.Format "2006-01-02 15:04:05"}} to {{.Newest.Format "2006-01-02 15:04:05"}}</p>

  <div class="stat-card">
    <div>Results</div>
    <div class="stat-val">{{.TotalResults}}</div>
  </div>
  <div class="stat-card">
    <div>With Snippet</div>
    <div class="stat-val">{{.WithSnippet}}</div>
  </div>
  <div class="stat-card">
    <div>Hosts</div>
    <div class="stat-val">{{len .Hosts}}</div>
  </div>

  {{- if .Terms}}
  <h3>Terms</h3>
  <table>
    <tr><th>Term</th><th>Count</th><th>Results</th></tr>
    {{- range .Terms}}
    <tr><td>{{.Term}}</td><td>{{.Count}}</td><td>{{len .Links}}</td></tr>
    {{- end}}
  </table>
  {{- end}}

  <h3>Results</h3>
  <table>
    <tr><th>Rank</th><th>Title</th><th>Snippet</th><th>Fetched</th></tr>
    {{- range .Rows}}
    <tr><td>{{.Rank}}</td><td><a href="{{.Link}}">{{.Title}}</a></td><td>{{.Snippet}}</td><td>{{.FetchedAt.Format "2006-01-02 15:04:05"}}</td></tr>
    {{- else}}
    <tr><td colspan="4">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	return nil
}
