package serp

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Default snippet heuristics for Google's result markup. The class names
// change whenever Google ships new markup.
var DefaultSnippetClasses = []string{
	"VwiC3b", // current common
	"aCOpRe", // older
	"IsZvec", // container, holds VwiC3b
}

const (
	DefaultSnippetMinLen = 30
	DefaultSnippetMaxLen = 500
)

// SnippetExtractor pulls the descriptive text out of a single result card.
// ok is false when the card has no usable snippet.
type SnippetExtractor interface {
	Extract(card *goquery.Selection) (snippet string, ok bool)
}

// ClassSnippetExtractor tries known snippet classes in priority order, then
// falls back to the first div whose normalized text length, in runes, lies
// within [MinLen, MaxLen].
type ClassSnippetExtractor struct {
	Classes []string
	MinLen  int
	MaxLen  int
}

// DefaultSnippetExtractor returns an extractor with the default classes and
// length bounds.
func DefaultSnippetExtractor() *ClassSnippetExtractor {
	return &ClassSnippetExtractor{
		Classes: append([]string(nil), DefaultSnippetClasses...),
		MinLen:  DefaultSnippetMinLen,
		MaxLen:  DefaultSnippetMaxLen,
	}
}

// Extract returns the snippet text of card. Classes are tried in order and a
// node with no text falls through to the next class; the div scan runs only
// when no class yields text. ok is false when nothing qualifies.
func (e *ClassSnippetExtractor) Extract(card *goquery.Selection) (string, bool) {
	for _, cls := range e.Classes {
		node := card.Find("." + cls).First()
		if node.Length() == 0 {
			continue
		}
		if txt := normalizeText(node.Text()); txt != "" {
			return txt, true
		}
	}

	var snippet string
	card.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		txt := normalizeText(div.Text())
		n := utf8.RuneCountInString(txt)
		if n >= e.MinLen && n <= e.MaxLen {
			snippet = txt
			return false
		}
		return true
	})

	return snippet, snippet != ""
}
