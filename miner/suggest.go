package miner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Rostezkiy/spectre/store"
)

// pkCandidates is the fixed priority list for primary-key inference.
// Order matters and is deliberately not configurable.
var pkCandidates = []string{"id", "uuid", "slug", "_id", "uid", "code"}

// BodySampler provides one stored response body per URL. *store.Store
// satisfies it; analysis needs nothing else from the store.
type BodySampler interface {
	SampleBody(ctx context.Context, url string) ([]byte, error)
}

// URLSource lists the distinct URLs to analyze.
type URLSource interface {
	DistinctURLs(ctx context.Context, limit int) ([]string, error)
}

// SuggestName proposes a resource name for a cluster: the last literal
// segment of the pattern, lower-cased; failing that, the last path
// segment of the first example URL; failing that, "resource".
func SuggestName(pattern string, exampleURLs []string) string {
	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" && !isPlaceholder(segments[i]) {
			return strings.ToLower(segments[i])
		}
	}

	if len(exampleURLs) > 0 {
		path := exampleURLs[0]
		if parsed, err := url.Parse(exampleURLs[0]); err == nil {
			path = parsed.Path
		}
		path = strings.TrimSuffix(path, "/")
		if i := strings.LastIndex(path, "/"); i >= 0 {
			path = path[i+1:]
		}
		if path != "" {
			return strings.ToLower(path)
		}
	}

	return "resource"
}

// Suggest converts clusters into resource suggestions. Name collisions
// across clusters are resolved in cluster order by appending _1, _2, …
// until unique. Primary-key inference samples the first example URL's
// stored body when a sampler is provided; sampling failures are
// non-fatal and keep the default.
func Suggest(ctx context.Context, clusters []Cluster, method string, sampler BodySampler, logger *slog.Logger) []store.Resource {
	if logger == nil {
		logger = slog.Default()
	}

	resources := make([]store.Resource, 0, len(clusters))
	seen := make(map[string]bool, len(clusters))

	for _, cluster := range clusters {
		name := SuggestName(cluster.Pattern, cluster.URLs)
		base := name
		for i := 1; seen[name]; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		seen[name] = true

		primaryKey := ""
		if hasPlaceholder(cluster.Pattern) {
			primaryKey = "id"
		}

		if sampler != nil && len(cluster.URLs) > 0 {
			if pk, ok := samplePrimaryKey(ctx, sampler, cluster.URLs[0]); ok {
				primaryKey = pk
			} else {
				logger.Debug("miner: no primary key sampled, keeping default",
					"pattern", cluster.Pattern, "default", primaryKey)
			}
		}

		resources = append(resources, store.NewResource(name, cluster.Pattern, method, primaryKey))
	}
	return resources
}

// samplePrimaryKey inspects one stored body. Top-level object keys are
// scanned against the candidate list; if the object carries a non-empty
// "data" array whose first element is an object, that element's scan
// overrides the top-level result.
func samplePrimaryKey(ctx context.Context, sampler BodySampler, exampleURL string) (string, bool) {
	body, err := sampler.SampleBody(ctx, exampleURL)
	if err != nil || body == nil {
		return "", false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}

	pk, found := scanCandidates(obj)

	if raw, ok := obj["data"]; ok {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0] != nil {
			if itemPK, itemFound := scanCandidates(items[0]); itemFound {
				return itemPK, true
			}
		}
	}

	return pk, found
}

func scanCandidates(obj map[string]json.RawMessage) (string, bool) {
	for _, cand := range pkCandidates {
		if _, ok := obj[cand]; ok {
			return cand, true
		}
	}
	return "", false
}
