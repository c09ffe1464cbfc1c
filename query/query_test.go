package query

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Rostezkiy/spectre/dbopen"
	"github.com/Rostezkiy/spectre/store"
)

func newTestTranslator(t *testing.T) (*Translator, *store.Store) {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	s := store.NewStore(db)
	return NewTranslator(s, nil), s
}

// seedCapture stores body as a blob and records a capture pointing at it.
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

var products = store.NewResource("products", "/api/products/{int}", "GET", "id")

func TestList(t *testing.T) {
	tr, s := newTestTranslator(t)
	seedCapture(t, s, "https://shop.example.com/api/products/1",
		`{"id":1,"name":"Widget","price":150}`, 1000)
	seedCapture(t, s, "https://shop.example.com/api/products/2",
		`{"id":2,"name":"Gadget","price":80}`, 2000)
	seedCapture(t, s, "https://shop.example.com/api/cart",
		`{"items":[]}`, 3000)

	res, err := tr.List(context.Background(), products, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total: got %d, want 2", res.Total)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records: got %d", len(res.Records))
	}
	// Default order is newest capture first.
	if res.Records[0]["name"] != "Gadget" {
		t.Errorf("order: got %v first", res.Records[0]["name"])
	}
	if res.Limit != DefaultLimit || res.Offset != 0 {
		t.Errorf("pagination echo: limit %d offset %d", res.Limit, res.Offset)
	}
}

func TestList_FilterAndSort(t *testing.T) {
	tr, s := newTestTranslator(t)
	seedCapture(t, s, "/api/products/1", `{"id":1,"name":"Widget","price":150}`, 1000)
	seedCapture(t, s, "/api/products/2", `{"id":2,"name":"Gadget","price":80}`, 2000)
	seedCapture(t, s, "/api/products/3", `{"id":3,"name":"Doohickey","price":220}`, 3000)
	ctx := context.Background()

	res, err := tr.List(ctx, products, ListOptions{
		Filters: map[string]string{"price__gt": "100"},
		Sort:    "price",
		Order:   "asc",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("total: got %d, want 2", res.Total)
	}
	if res.Records[0]["name"] != "Widget" || res.Records[1]["name"] != "Doohickey" {
		t.Errorf("sort asc by price: got %v, %v",
			res.Records[0]["name"], res.Records[1]["name"])
	}

	res, err = tr.List(ctx, products, ListOptions{
		Filters: map[string]string{"name__contains": "get"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("contains filter: got %d, want 2", res.Total)
	}
}

func TestList_UnsafeInputIsHarmless(t *testing.T) {
	// WHAT: hostile filter keys and sort fields are dropped, the query
	// still runs, and the data survives.
	tr, s := newTestTranslator(t)
	seedCapture(t, s, "/api/products/1", `{"id":1,"price":10}`, 1000)
	ctx := context.Background()

	res, err := tr.List(ctx, products, ListOptions{
		Filters: map[string]string{"price'; DROP TABLE captures; --": "10"},
		Sort:    "price'; DROP TABLE captures; --",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("total after hostile input: got %d", res.Total)
	}
	if n, _ := s.CountCaptures(ctx); n != 1 {
		t.Errorf("captures table damaged: %d rows", n)
	}
}

func TestList_PaginationAndEmpty(t *testing.T) {
	tr, s := newTestTranslator(t)
	for i := int64(1); i <= 5; i++ {
		seedCapture(t, s, "/api/products/1", `{"id":1,"n":`+string(rune('0'+i))+`}`, i*1000)
	}
	ctx := context.Background()

	res, err := tr.List(ctx, products, ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 5 || len(res.Records) != 2 || res.Limit != 2 || res.Offset != 2 {
		t.Errorf("page: total %d, records %d, limit %d, offset %d",
			res.Total, len(res.Records), res.Limit, res.Offset)
	}

	// Limit above the cap is clamped, negative offset is zeroed.
	res, err = tr.List(ctx, products, ListOptions{Limit: 5000, Offset: -3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Limit != MaxLimit || res.Offset != 0 {
		t.Errorf("clamp: limit %d offset %d", res.Limit, res.Offset)
	}

	empty, err := tr.List(ctx, store.NewResource("orders", "/api/orders/{int}", "GET", "id"), ListOptions{})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if empty.Total != 0 || empty.Records == nil || len(empty.Records) != 0 {
		t.Errorf("empty set: total %d, records %v", empty.Total, empty.Records)
	}
}

func TestGet(t *testing.T) {
	tr, s := newTestTranslator(t)
	id := seedCapture(t, s, "/api/products/7", `{"id":7,"name":"Widget"}`, 1000)
	ctx := context.Background()

	rec, err := tr.Get(ctx, products, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec["name"] != "Widget" {
		t.Errorf("record: %v", rec)
	}

	_, err = tr.Get(ctx, products, "cap_missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	tr, s := newTestTranslator(t)
	ctx := context.Background()

	_, err := tr.Latest(ctx, products)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("empty latest: %v", err)
	}

	seedCapture(t, s, "/api/products/1", `{"id":1,"rev":"old"}`, 1000)
	seedCapture(t, s, "/api/products/1", `{"id":1,"rev":"new"}`, 2000)

	rec, err := tr.Latest(ctx, products)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec["rev"] != "new" {
		t.Errorf("latest: got rev %v", rec["rev"])
	}
}

func TestHistory(t *testing.T) {
	tr, s := newTestTranslator(t)
	seedCapture(t, s, "/api/products/1", `{"id":1,"secret_field":"x"}`, 1000)
	seedCapture(t, s, "/api/products/1", `{"id":1,"secret_field":"y"}`, 2000)
	ctx := context.Background()

	res, err := tr.History(ctx, products, 1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 1 {
		t.Errorf("page: total %d, entries %d", res.Total, len(res.Entries))
	}
	if res.Entries[0].Timestamp != 2000 {
		t.Errorf("order: got ts %d first", res.Entries[0].Timestamp)
	}
	if res.Entries[0].Status != 200 || res.Entries[0].URL != "/api/products/1" {
		t.Errorf("entry: %+v", res.Entries[0])
	}
}

func TestRecordHydration(t *testing.T) {
	// WHAT: body fields overwrite colliding metadata keys, and a non-object
	// body lands whole under "body".
	tr, s := newTestTranslator(t)
	ctx := context.Background()

	seedCapture(t, s, "/api/products/1", `{"id":"body-id","name":"Widget"}`, 1000)
	rec, err := tr.Latest(ctx, products)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rec["id"] != "body-id" {
		t.Errorf("body should win over metadata id: got %v", rec["id"])
	}
	if rec["url"] != "/api/products/1" || rec["method"] != "GET" {
		t.Errorf("metadata missing: %v", rec)
	}

	seedCapture(t, s, "/api/products/2", `[1,2,3]`, 2000)
	rec, err = tr.Latest(ctx, products)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	arr, ok := rec["body"].([]any)
	if !ok || len(arr) != 3 {
		t.Errorf("array body: got %v", rec["body"])
	}
}
