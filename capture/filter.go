package capture

import (
	"net/url"
	"strings"
)

// jsonContentTypes are the media types treated as JSON payloads. The
// comparison strips parameters first, so any charset variant matches.
var jsonContentTypes = map[string]bool{
	"application/json":         true,
	"application/vnd.api+json": true,
	"text/json":                true,
}

// DefaultIgnoredDomains filters out analytics and ad-network chatter
// that would otherwise pollute every capture session.
var DefaultIgnoredDomains = []string{
	"google-analytics.com",
	"facebook.com",
	"doubleclick.net",
	"googlesyndication.com",
	"googleadservices.com",
	"googletagmanager.com",
	"analytics.google.com",
	"adsystem.google.com",
}

// IsJSONContentType reports whether a content type (with optional
// parameters, e.g. "application/json; charset=utf-8") denotes JSON.
func IsJSONContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return jsonContentTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

// IgnoredDomain reports whether the URL's host is one of the ignored
// domains or a subdomain of one. An unparseable URL is not ignored; the
// content-type filter decides its fate.
func IgnoredDomain(rawURL string, ignored []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range ignored {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
