// Package miner turns a set of concrete captured URLs into named, typed
// resource suggestions: it classifies path segments, clusters URLs into
// abstract patterns, names the clusters, and infers a primary-key field
// by sampling stored bodies.
//
// The miner observes, it does not write. Analysis is a read-only pass
// over whatever snapshot of distinct URLs the store returns, so it can
// run concurrently with ingestion and serving.
package miner

import (
	"net/url"
	"regexp"
	"strings"
)

// Placeholder tokens shared with the query translator. Mined patterns and
// serve-time matchers use the exact same grammar, so a pattern stored by
// the miner matches bit-for-bit at serve time.
const (
	PlaceholderInt  = "{int}"
	PlaceholderUUID = "{uuid}"
	PlaceholderID   = "{id}"
)

var (
	intSegment  = regexp.MustCompile(`^[0-9]+$`)
	uuidSegment = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	slugSegment = regexp.MustCompile(`^(?i)[a-z0-9\-_]+$`)
)

// ClassifySegment maps one URL path segment to a placeholder token, or
// returns it unchanged when it looks like a static path component.
// Deliberately conservative: a short, digit-free slug is a collection
// name, not an ID.
func ClassifySegment(segment string) string {
	if segment == "" {
		return segment
	}
	if intSegment.MatchString(segment) {
		return PlaceholderInt
	}
	if uuidSegment.MatchString(segment) {
		return PlaceholderUUID
	}
	if slugSegment.MatchString(segment) {
		if strings.ContainsAny(segment, "0123456789") || len(segment) > 20 {
			return PlaceholderID
		}
	}
	return segment
}

// URLToPattern converts a concrete URL into its abstract pattern:
//
//	/api/products/123  → /api/products/{int}
//	/api/users/550e8400-e29b-41d4-a716-446655440000 → /api/users/{uuid}
//	/api/posts/my-slug-2024 → /api/posts/{id}
//
// Only the path participates; scheme and host are ignored. An empty path
// yields "/".
func URLToPattern(rawURL string) string {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}
	path = strings.TrimSuffix(path, "/")

	var classified []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		classified = append(classified, ClassifySegment(seg))
	}
	if len(classified) == 0 {
		return "/"
	}
	return "/" + strings.Join(classified, "/")
}

// isPlaceholder reports whether a pattern segment is one of the three
// recognized placeholder tokens.
func isPlaceholder(segment string) bool {
	return segment == PlaceholderInt || segment == PlaceholderUUID || segment == PlaceholderID
}

// hasPlaceholder reports whether a pattern contains any placeholder.
func hasPlaceholder(pattern string) bool {
	return strings.Contains(pattern, PlaceholderInt) ||
		strings.Contains(pattern, PlaceholderUUID) ||
		strings.Contains(pattern, PlaceholderID)
}
