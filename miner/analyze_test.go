package miner

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Rostezkiy/spectre/dbopen"
	"github.com/Rostezkiy/spectre/store"
)

func TestAnalyze_EndToEnd(t *testing.T) {
	// WHAT: A full pass over a real store: capture → cluster → suggest,
	// with the primary key sampled from the stored body.
	// WHY: Analyze is the seam between store and miner; the narrow
	// interfaces must line up with what the store actually provides.
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	s := store.NewStore(db)
	ctx := context.Background()

	bodies := map[string]string{
		"https://shop.test/api/products/1": `{"uuid": "p-1", "price": 10}`,
		"https://shop.test/api/products/2": `{"uuid": "p-2", "price": 20}`,
		"https://shop.test/api/cart":       `{"items": []}`,
	}
	for url, body := range bodies {
		digest, err := s.PutBlob(ctx, []byte(body))
		if err != nil {
			t.Fatalf("put blob: %v", err)
		}
		if _, err := s.InsertCapture(ctx, &store.Capture{
			SessionID: "sess", URL: url, Status: 200, BlobDigest: digest,
		}); err != nil {
			t.Fatalf("insert capture: %v", err)
		}
	}

	analysis, err := Analyze(ctx, s, 0, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Clusters) != 2 {
		t.Fatalf("clusters: got %d, want 2", len(analysis.Clusters))
	}
	if len(analysis.Resources) != 2 {
		t.Fatalf("resources: got %d, want 2", len(analysis.Resources))
	}

	byName := make(map[string]store.Resource)
	for _, r := range analysis.Resources {
		byName[r.Name] = r
	}
	products, ok := byName["products"]
	if !ok {
		t.Fatalf("no products resource in %v", analysis.Resources)
	}
	if products.URLPattern != "/api/products/{int}" {
		t.Errorf("pattern: got %q", products.URLPattern)
	}
	if products.PrimaryKey != "uuid" {
		t.Errorf("sampled pk: got %q, want uuid", products.PrimaryKey)
	}
	if cart, ok := byName["cart"]; !ok || cart.PrimaryKey != "" {
		t.Errorf("cart resource: %+v", cart)
	}
}

func TestAnalyze_EmptyStore(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	s := store.NewStore(db)

	analysis, err := Analyze(context.Background(), s, 100, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Clusters) != 0 || len(analysis.Resources) != 0 {
		t.Errorf("expected empty analysis, got %+v", analysis)
	}
}
