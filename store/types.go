package store

import "strings"

// Blob is an immutable, content-addressed JSON body keyed by the SHA-256
// hex digest of its exact raw bytes.
type Blob struct {
	Digest    string
	Body      string // JSON text as captured
	CreatedAt int64  // unix millis
}

// Capture is one observed HTTP response. It references a Blob by digest;
// the blob row is always written first.
type Capture struct {
	ID         string
	SessionID  string
	URL        string
	Method     string
	Headers    map[string]string // nullable
	Status     int
	BlobDigest string
	Timestamp  int64 // unix millis
}

// Resource is a named, persisted API surface definition: a URL pattern
// with {int}/{uuid}/{id} placeholders, the HTTP method it matches, and an
// optional primary-key field inside the JSON body.
type Resource struct {
	Name       string `yaml:"name" json:"name"`
	URLPattern string `yaml:"url_pattern" json:"url_pattern"`
	Method     string `yaml:"method" json:"method"`
	PrimaryKey string `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
}

// NewResource builds a Resource with the method normalized to upper case.
// An empty method defaults to GET.
func NewResource(name, pattern, method, primaryKey string) Resource {
	if method == "" {
		method = "GET"
	}
	return Resource{
		Name:       name,
		URLPattern: pattern,
		Method:     strings.ToUpper(method),
		PrimaryKey: primaryKey,
	}
}
