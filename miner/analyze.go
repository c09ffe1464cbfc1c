package miner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rostezkiy/spectre/store"
)

// DefaultURLLimit caps the number of distinct URLs one analysis run reads.
const DefaultURLLimit = 1000

// Analysis is the result of one mining pass: clusters for diagnostic
// display, resources for config emission or direct registry use.
type Analysis struct {
	Clusters  []Cluster
	Resources []store.Resource
}

// Source is what Analyze needs from the store: a URL sample and body
// sampling. Both are reads; analysis never mutates the store.
type Source interface {
	URLSource
	BodySampler
}

// Analyze performs a full mining pass over the captured URLs: fetch the
// distinct URL sample, cluster, and suggest resources.
func Analyze(ctx context.Context, src Source, limit int, logger *slog.Logger) (*Analysis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = DefaultURLLimit
	}

	urls, err := src.DistinctURLs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("miner: list urls: %w", err)
	}
	if len(urls) == 0 {
		logger.Warn("miner: no captured URLs found")
		return &Analysis{}, nil
	}

	logger.Info("miner: analyzing distinct urls", "count", len(urls))
	clusters := ClusterURLs(urls)
	resources := Suggest(ctx, clusters, "GET", src, logger)

	logger.Info("miner: analysis complete",
		"patterns", len(clusters), "resources", len(resources))
	return &Analysis{Clusters: clusters, Resources: resources}, nil
}
