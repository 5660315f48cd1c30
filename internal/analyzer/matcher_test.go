package analyzer

import (
	"reflect"
	"testing"

	"github.com/FranksOps/serpkeep/internal/storage"
)

func TestFindTermMatches(t *testing.T) {
	rows := []*storage.Result{
		{Link: "https://jobs.lever.co/a", Title: "Customer Support Specialist", Snippet: "Fully remote. Full-time role on our support team!"},
		{Link: "https://jobs.lever.co/b", Title: "Account Executive", Snippet: "Hybrid in Berlin."},
		{Link: "https://jobs.lever.co/c", Title: "Remote Support Engineer"},
	}

	matches := FindTermMatches(rows, []string{"remote", "SUPPORT", "onsite"})

	if len(matches) != 2 {
		t.Fatalf("expected 2 matching terms, got %d: %+v", len(matches), matches)
	}

	remote := matches[0]
	if remote.Term != "remote" || remote.Count != 2 {
		t.Errorf("unexpected remote match: %+v", remote)
	}
	if !reflect.DeepEqual(remote.Links, []string{"https://jobs.lever.co/a", "https://jobs.lever.co/c"}) {
		t.Errorf("unexpected remote links: %v", remote.Links)
	}
	wantSentences := []string{"Fully remote.", "Remote Support Engineer"}
	if !reflect.DeepEqual(remote.Sentences, wantSentences) {
		t.Errorf("expected sentences %v, got %v", wantSentences, remote.Sentences)
	}

	support := matches[1]
	if support.Term != "SUPPORT" || support.Count != 3 {
		t.Errorf("unexpected support match: %+v", support)
	}
}

func TestFindTermMatches_Empty(t *testing.T) {
	if got := FindTermMatches(nil, []string{"x"}); got != nil {
		t.Errorf("expected nil for no rows, got %v", got)
	}
	rows := []*storage.Result{{Link: "https://a", Title: "A"}}
	if got := FindTermMatches(rows, nil); got != nil {
		t.Errorf("expected nil for no terms, got %v", got)
	}
	if got := FindTermMatches(rows, []string{"  "}); len(got) != 0 {
		t.Errorf("expected blank term to be ignored, got %v", got)
	}
}

func TestSplitIntoSentences(t *testing.T) {
	got := splitIntoSentences("One. Two!  Three? four")
	want := []string{"One.", "Two!", "Three?", "four"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d", len(want), len(got))
	}
	for i, sd := range got {
		if sd.original != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], sd.original)
		}
	}
}
