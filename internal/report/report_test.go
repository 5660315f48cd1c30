package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/serpkeep/internal/storage"
)

func TestGenerateSummary(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	rows := []*storage.Result{
		{
			Rank:      1,
			Title:     "Customer Support Specialist",
			Link:      "https://jobs.lever.co/acme/1",
			Snippet:   "Remote, full time.",
			Query:     "support",
			FetchedAt: now,
		},
		{
			Rank:      2,
			Title:     "Support Lead",
			Link:      "https://jobs.lever.co/acme/2",
			Query:     "support",
			FetchedAt: now.Add(-2 * time.Hour),
		},
		{
			Rank:      1,
			Title:     "Remote Agent",
			Link:      "https://boards.greenhouse.io/x/3",
			Query:     "agent",
			FetchedAt: now.Add(-time.Hour),
		},
	}

	summary := GenerateSummary(rows, []string{"remote"})

	if summary.TotalResults != 3 {
		t.Errorf("expected 3 results, got %d", summary.TotalResults)
	}
	if summary.WithSnippet != 1 {
		t.Errorf("expected 1 with snippet, got %d", summary.WithSnippet)
	}
	if summary.Queries["support"] != 2 || summary.Queries["agent"] != 1 {
		t.Errorf("unexpected queries: %v", summary.Queries)
	}
	if summary.Hosts["jobs.lever.co"] != 2 || summary.Hosts["boards.greenhouse.io"] != 1 {
		t.Errorf("unexpected hosts: %v", summary.Hosts)
	}
	if !summary.Oldest.Equal(now.Add(-2*time.Hour)) || !summary.Newest.Equal(now) {
		t.Errorf("unexpected range: %v - %v", summary.Oldest, summary.Newest)
	}
	if len(summary.Terms) != 1 || summary.Terms[0].Count != 2 {
		t.Errorf("unexpected terms: %+v", summary.Terms)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	summary := GenerateSummary(nil, []string{"remote"})
	if summary.TotalResults != 0 || len(summary.Hosts) != 0 || summary.Terms != nil {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestWriteJSON(t *testing.T) {
	summary := Summary{
		TotalResults: 5,
		Rows:         []*storage.Result{{Title: "hidden"}},
	}
	var buf bytes.Buffer
	err := WriteJSON(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `"TotalResults": 5`) {
		t.Errorf("expected JSON to contain TotalResults: 5")
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("expected rows to be left out of JSON summary")
	}
}

func TestWriteText(t *testing.T) {
	summary := Summary{
		TotalResults: 5,
		WithSnippet:  4,
		Hosts: map[string]int{
			"jobs.lever.co": 5,
		},
	}
	var buf bytes.Buffer
	err := WriteText(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Results:       5") {
		t.Errorf("expected text to contain Results: 5")
	}
	if !strings.Contains(out, "jobs.lever.co: 5") {
		t.Errorf("expected text to contain jobs.lever.co: 5")
	}
}

func TestWriteHTML(t *testing.T) {
	summary := GenerateSummary([]*storage.Result{
		{Rank: 1, Title: "<b>Support</b>", Link: "https://jobs.lever.co/a", FetchedAt: time.Now()},
	}, nil)
	var buf bytes.Buffer
	err := WriteHTML(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>serpkeep Report</title>") {
		t.Errorf("expected HTML title")
	}
	if !strings.Contains(out, `href="https://jobs.lever.co/a"`) {
		t.Errorf("expected HTML to link the result")
	}
	if strings.Contains(out, "<b>Support</b>") {
		t.Errorf("expected scraped title to be escaped")
	}
}
