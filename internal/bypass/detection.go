package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the part of an HTTP response the detectors look at.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// Detector examines a response to determine whether the search engine served
// a block, challenge or interstitial page instead of results.
type Detector func(res *Response) (detected bool, source string)

// Detection sources reported by the default detectors.
const (
	SourceGoogleSorry   = "GoogleSorry"
	SourceGoogleConsent = "GoogleConsent"
	SourceCloudflare    = "Cloudflare"
)

// DefaultDetectors returns the standard list of block page detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectGoogleSorry,
		detectGoogleConsent,
		detectCloudflare,
	}
}

// Analyze runs the response through the detectors in order and returns the
// source of the first one that triggers.
func Analyze(res *Response, detectors []Detector) (bool, string) {
	if res == nil {
		return false, ""
	}
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return true, source
		}
	}
	return false, ""
}

func getHeader(headers map[string][]string, key string) string {
	if vals, ok := headers[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	// Case-insensitive fallback
	for k, vals := range headers {
		if strings.EqualFold(k, key) && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// detectGoogleSorry recognises the "unusual traffic" captcha interstitial
// Google serves from /sorry/index, usually with a 429 or 503.
func detectGoogleSorry(res *Response) (bool, string) {
	if res.StatusCode != http.StatusTooManyRequests && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(getHeader(res.Headers, "Location"), "/sorry/") ||
		bytes.Contains(res.Body, []byte("/sorry/index")) ||
		bytes.Contains(res.Body, []byte("unusual traffic from your computer network")) {
		return true, SourceGoogleSorry
	}
	return false, ""
}

// detectGoogleConsent recognises the EU cookie consent wall, which arrives as
// a 200 without any result cards.
func detectGoogleConsent(res *Response) (bool, string) {
	if res.StatusCode != http.StatusOK {
		return false, ""
	}
	if bytes.Contains(res.Body, []byte("consent.google.com")) &&
		bytes.Contains(res.Body, []byte("Before you continue")) {
		return true, SourceGoogleConsent
	}
	return false, ""
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(res *Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	server := strings.ToLower(getHeader(res.Headers, "Server"))
	if strings.Contains(server, "cloudflare") {
		return true, SourceCloudflare
	}

	if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
		bytes.Contains(res.Body, []byte("cf-turnstile")) ||
		bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
		return true, SourceCloudflare
	}
	return false, ""
}
