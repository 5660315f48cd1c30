package analyzer

import (
	"strings"
	"unicode"

	"github.com/FranksOps/serpkeep/internal/storage"
)

// TermMatch represents occurrences of a term across stored listings.
type TermMatch struct {
	Term      string   `json:"term"`
	Count     int      `json:"count"`
	Links     []string `json:"links"`
	Sentences []string `json:"sentences"`
}

// FindTermMatches scans the title and snippet of every row for each term
// (case-insensitive). Terms with no occurrence are omitted. Links lists each
// matching row once, in row order, and Sentences holds the distinct sentences
// the term appeared in.
func FindTermMatches(rows []*storage.Result, terms []string) []TermMatch {
	if len(rows) == 0 || len(terms) == 0 {
		return nil
	}

	type rowText struct {
		link      string
		lower     string
		sentences []sentenceData
	}
	texts := make([]rowText, 0, len(rows))
	for _, r := range rows {
		content := r.Title
		if r.Snippet != "" {
			content += ". " + r.Snippet
		}
		texts = append(texts, rowText{
			link:      r.Link,
			lower:     strings.ToLower(content),
			sentences: splitIntoSentences(content),
		})
	}

	results := make([]TermMatch, 0, len(terms))
	for _, term := range terms {
		lowerTerm := strings.ToLower(strings.TrimSpace(term))
		if lowerTerm == "" {
			continue
		}

		m := TermMatch{Term: term}
		seen := make(map[string]bool)
		for _, rt := range texts {
			n := strings.Count(rt.lower, lowerTerm)
			if n == 0 {
				continue
			}
			m.Count += n
			m.Links = append(m.Links, rt.link)
			for _, sd := range rt.sentences {
				if strings.Contains(sd.lower, lowerTerm) && !seen[sd.original] {
					seen[sd.original] = true
					m.Sentences = append(m.Sentences, sd.original)
				}
			}
		}
		if m.Count > 0 {
			results = append(results, m)
		}
	}
	return results
}

// sentenceData holds original and lowercase versions together
type sentenceData struct {
	original string
	lower    string
}

// splitIntoSentences splits text on '.', '!' or '?', keeping the delimiter at
// the end of each sentence.
func splitIntoSentences(text string) []sentenceData {
	if len(text) == 0 {
		return nil
	}

	var sentences []sentenceData
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		sentences = append(sentences, sentenceData{original: s, lower: strings.ToLower(s)})
	}

	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			end := i + 1
			for end < len(text) && unicode.IsSpace(rune(text[end])) {
				end++
			}
			add(text[start:end])
			start = end
		}
	}

	if start < len(text) {
		add(text[start:])
	}

	return sentences
}
