package scraper

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/FranksOps/serpkeep/internal/bypass"
	"github.com/FranksOps/serpkeep/internal/fingerprint"
	"github.com/FranksOps/serpkeep/internal/metrics"
	"github.com/FranksOps/serpkeep/pkg/httpclient"
)

// FetchConfig configures the fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	Fingerprint  fingerprint.Profile
	// RootCAs overrides the system certificate pool; nil keeps it.
	RootCAs *x509.CertPool
	// Header is the fixed header set sent with every request
	// (User-Agent, Accept-Language).
	Header    http.Header
	Detectors []bypass.Detector
	Logger    *slog.Logger
}

// Page is a fetched response.
type Page struct {
	URL          string
	StatusCode   int
	Headers      map[string][]string
	Body         []byte
	Duration     time.Duration
	DetectedBot  bool
	DetectionSrc string // e.g. "GoogleSorry", "Cloudflare"
}

// StatusError is returned by Fetch for any non-2xx response.
type StatusError struct {
	URL          string
	StatusCode   int
	DetectionSrc string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	if e.DetectionSrc != "" {
		msg += fmt.Sprintf(" (blocked: %s)", e.DetectionSrc)
	}
	return msg
}

// Fetcher performs single GET requests with a fixed header set.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}
	if cfg.Detectors == nil {
		cfg.Detectors = bypass.DefaultDetectors()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, cfg.RootCAs)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Header:       cfg.Header,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Fetch performs exactly one GET of targetURL. Transport failures are
// returned as errors. A non-2xx status returns the Page together with a
// *StatusError. There is no retry.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	f.config.Logger.Debug("fetching", "url", targetURL)
	start := time.Now()

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		metrics.RecordFetch(0, "", 0, time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetch(0, "", len(body), time.Since(start))
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	page := &Page{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}

	page.DetectedBot, page.DetectionSrc = bypass.Analyze(&bypass.Response{
		StatusCode: page.StatusCode,
		Headers:    page.Headers,
		Body:       page.Body,
	}, f.config.Detectors)

	metrics.RecordFetch(page.StatusCode, page.DetectionSrc, len(page.Body), page.Duration)
	f.config.Logger.Debug("fetched", "url", targetURL, "status", page.StatusCode,
		"bytes", len(page.Body), "duration", page.Duration)

	if page.StatusCode < 200 || page.StatusCode > 299 {
		return page, &StatusError{
			URL:          targetURL,
			StatusCode:   page.StatusCode,
			DetectionSrc: page.DetectionSrc,
		}
	}

	return page, nil
}
