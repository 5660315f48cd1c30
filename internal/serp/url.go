package serp

import (
	"fmt"
	"net/url"
	"strings"
)

// RedirectPrefix marks Google's internal redirect links, e.g.
// /url?q=https://example.com&sa=U.
const RedirectPrefix = "/url?"

// BuildURL composes base with params form-encoded as its query string. Keys
// are emitted in sorted order. Values are not validated.
func BuildURL(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	vals := make(url.Values, len(params))
	for k, v := range params {
		vals.Set(k, v)
	}
	u.RawQuery = vals.Encode()

	return u.String(), nil
}

// UnwrapRedirect resolves a redirect wrapper to its target. Links without
// RedirectPrefix are returned unchanged. For wrapped links the decoded q
// parameter is returned; ok is false when q is missing or empty, or when
// the link does not parse. Malformed pairs other than q are ignored.
func UnwrapRedirect(link string) (target string, ok bool) {
	if !strings.HasPrefix(link, RedirectPrefix) {
		return link, true
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	// ParseQuery keeps every well-formed pair even when it reports an error.
	vals, _ := url.ParseQuery(u.RawQuery)

	target = vals.Get("q")
	if target == "" {
		return "", false
	}
	return target, true
}
