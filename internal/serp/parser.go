package serp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/serpkeep/internal/metrics"
	"github.com/FranksOps/serpkeep/internal/storage"
	"github.com/PuerkitoBio/goquery"
)

// Default selectors for Google's result markup.
const (
	DefaultCardSelector         = "div.g"
	DefaultFallbackCardSelector = "a:has(h3)"
	DefaultHeadingSelector      = "h3"
)

// ParserConfig configures result extraction.
type ParserConfig struct {
	// Query is copied onto every extracted row.
	Query string
	// CardSelector selects result cards. When it matches nothing,
	// FallbackCardSelector is tried instead.
	CardSelector         string
	FallbackCardSelector string
	HeadingSelector      string
	Snippets             SnippetExtractor
	Now                  func() time.Time
}

// Parser extracts result rows from a search results page.
type Parser struct {
	cfg ParserConfig
}

// NewParser returns a Parser, filling unset fields with the defaults.
func NewParser(cfg ParserConfig) *Parser {
	if cfg.CardSelector == "" {
		cfg.CardSelector = DefaultCardSelector
	}
	if cfg.FallbackCardSelector == "" {
		cfg.FallbackCardSelector = DefaultFallbackCardSelector
	}
	if cfg.HeadingSelector == "" {
		cfg.HeadingSelector = DefaultHeadingSelector
	}
	if cfg.Snippets == nil {
		cfg.Snippets = DefaultSnippetExtractor()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Parser{cfg: cfg}
}

// Parse returns the accepted result cards in page order. Ranks are dense and
// start at 1; skipped cards do not consume a rank. A page without cards
// yields an empty slice and no error.
func (p *Parser) Parse(html string) ([]*storage.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	cards := doc.Find(p.cfg.CardSelector)
	if cards.Length() == 0 {
		cards = doc.Find(p.cfg.FallbackCardSelector)
	}

	fetchedAt := p.cfg.Now().UTC().Truncate(time.Second)
	results := []*storage.Result{}
	rank := 0

	cards.Each(func(_ int, card *goquery.Selection) {
		title, link, outcome := p.extractCard(card)
		metrics.RecordCard(outcome)
		if outcome != metrics.CardAccepted {
			return
		}

		rank++
		snippet, _ := p.cfg.Snippets.Extract(card)

		results = append(results, &storage.Result{
			Rank:      rank,
			Title:     title,
			Link:      link,
			Snippet:   snippet,
			Query:     p.cfg.Query,
			FetchedAt: fetchedAt,
		})
	})

	return results, nil
}

// extractCard finds the title and resolved link of a card, or reports why
// the card was skipped.
func (p *Parser) extractCard(card *goquery.Selection) (title, link, outcome string) {
	heading := card.Find(p.cfg.HeadingSelector).First()
	if heading.Length() == 0 {
		return "", "", metrics.CardNoHeading
	}

	anchor := heading.Closest("a")
	if anchor.Length() == 0 {
		anchor = card.Find("a").First()
	}
	href, ok := anchor.Attr("href")
	if anchor.Length() == 0 || !ok {
		return "", "", metrics.CardNoAnchor
	}

	link, outcome = resolveLink(href)
	if outcome != metrics.CardAccepted {
		return "", "", outcome
	}

	title = normalizeText(heading.Text())
	if title == "" {
		return "", "", metrics.CardEmptyTitle
	}

	return title, link, metrics.CardAccepted
}

// resolveLink unwraps redirect links and rejects anything that is not an
// absolute URL.
func resolveLink(href string) (string, string) {
	link := href
	if strings.HasPrefix(href, RedirectPrefix) {
		target, ok := UnwrapRedirect(href)
		if !ok {
			return "", metrics.CardUnresolvedRedirect
		}
		link = target
	}

	if strings.HasPrefix(link, "/") {
		return "", metrics.CardInternalLink
	}
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", metrics.CardNotAbsolute
	}

	return link, metrics.CardAccepted
}
