package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Rostezkiy/spectre/dbopen"
	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/registry"
	"github.com/Rostezkiy/spectre/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	s := store.NewStore(db)
	reg := registry.New([]store.Resource{
		store.NewResource("products", "/api/products/{int}", "GET", "id"),
		store.NewResource("orders", "/api/orders/{uuid}", "GET", "uuid"),
	})
	return NewServer(reg, query.NewTranslator(s, nil), nil), s
}

func seedCapture(t *testing.T, s *store.Store, url, body string, ts int64) string {
	t.Helper()
	ctx := context.Background()
	digest, err := s.PutBlob(ctx, []byte(body))
	if err != nil {
		t.Fatalf("put blob: %v", err)
	}
	id, err := s.InsertCapture(ctx, &store.Capture{
		SessionID:  "20260101_120000",
		URL:        url,
		Method:     "GET",
		Status:     200,
		BlobDigest: digest,
		Timestamp:  ts,
	})
	if err != nil {
		t.Fatalf("insert capture: %v", err)
	}
	return id
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s response: %v (%s)", path, err, rec.Body.String())
	}
	return rec, body
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doGet(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("index status: %d", rec.Code)
	}
	names, _ := body["resources"].([]any)
	if len(names) != 2 || names[0] != "products" {
		t.Errorf("resources: %v", body["resources"])
	}

	rec, body = doGet(t, srv, "/health")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health: %d %v", rec.Code, body)
	}
}

func TestList(t *testing.T) {
	srv, s := newTestServer(t)
	seedCapture(t, s, "/api/products/1", `{"id":1,"name":"Widget","price":150}`, 1000)
	seedCapture(t, s, "/api/products/2", `{"id":2,"name":"Gadget","price":80}`, 2000)

	rec, body := doGet(t, srv, "/api/products")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if body["resource"] != "products" || body["total"] != float64(2) {
		t.Errorf("envelope: %v", body)
	}
	data, _ := body["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("data: %v", body["data"])
	}

	// Filter via query string; reserved params are not filters.
	rec, body = doGet(t, srv, "/api/products?price__gt=100&limit=10")
	if rec.Code != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("filtered: %d %v", rec.Code, body)
	}
	if body["limit"] != float64(10) {
		t.Errorf("limit echo: %v", body["limit"])
	}
}

func TestList_UnknownResource(t *testing.T) {
	srv, _ := newTestServer(t)

	rec, body := doGet(t, srv, "/api/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: %d", rec.Code)
	}
	if body["error"] == nil || body["resources"] == nil {
		t.Errorf("404 body should name known resources: %v", body)
	}
}

func TestGet(t *testing.T) {
	srv, s := newTestServer(t)
	id := seedCapture(t, s, "/api/products/7", `{"id":7,"name":"Widget"}`, 1000)

	rec, body := doGet(t, srv, "/api/products/"+id)
	if rec.Code != http.StatusOK || body["name"] != "Widget" {
		t.Errorf("get: %d %v", rec.Code, body)
	}

	rec, _ = doGet(t, srv, "/api/products/cap_missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing record: %d", rec.Code)
	}
}

func TestLatest(t *testing.T) {
	srv, s := newTestServer(t)

	rec, _ := doGet(t, srv, "/api/products/latest")
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty latest: %d", rec.Code)
	}

	seedCapture(t, s, "/api/products/1", `{"id":1,"rev":"old"}`, 1000)
	seedCapture(t, s, "/api/products/1", `{"id":1,"rev":"new"}`, 2000)

	rec, body := doGet(t, srv, "/api/products/latest")
	if rec.Code != http.StatusOK || body["rev"] != "new" {
		t.Errorf("latest: %d %v", rec.Code, body)
	}
}

func TestHistory(t *testing.T) {
	srv, s := newTestServer(t)
	seedCapture(t, s, "/api/products/1", `{"id":1,"name":"hidden"}`, 1000)
	seedCapture(t, s, "/api/products/1", `{"id":1,"name":"hidden"}`, 2000)

	rec, body := doGet(t, srv, "/api/products/history?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if body["total"] != float64(2) || body["limit"] != float64(1) {
		t.Errorf("envelope: %v", body)
	}
	entries, _ := body["history"].([]any)
	if len(entries) != 1 {
		t.Fatalf("entries: %v", body["history"])
	}
	entry, _ := entries[0].(map[string]any)
	if entry["name"] != nil {
		t.Errorf("history must not include body fields: %v", entry)
	}
	if entry["timestamp"] != float64(2000) {
		t.Errorf("newest first: %v", entry)
	}
}

func TestRegistryReloadVisibleWithoutRemount(t *testing.T) {
	// WHAT: handlers resolve the resource per request, so a reload takes
	// effect on the running router.
	srv, s := newTestServer(t)
	seedCapture(t, s, "/api/reviews/1", `{"id":1,"stars":5}`, 1000)

	rec, _ := doGet(t, srv, "/api/reviews")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("before reload: %d", rec.Code)
	}

	srv.registry.Reload([]store.Resource{
		store.NewResource("reviews", "/api/reviews/{int}", "GET", "id"),
	})

	rec, body := doGet(t, srv, "/api/reviews")
	if rec.Code != http.StatusOK || body["total"] != float64(1) {
		t.Errorf("after reload: %d %v", rec.Code, body)
	}
}
