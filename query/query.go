// Package query translates a resource definition plus ad-hoc request
// parameters into parameterized SQL against the capture store, and
// hydrates the result rows back into API records.
//
// Untrusted input never reaches the generated SQL as text: URL patterns
// are literal-escaped before compilation, filter values are bound as
// parameters, and every interpolated field name passes the safeField
// allow-list first.
package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rostezkiy/spectre/store"
)

// ErrRecordNotFound is returned when no capture matches the request.
var ErrRecordNotFound = errors.New("query: record not found")

// Pagination bounds. History pages are smaller: timeline views are
// denser than record listings.
const (
	DefaultLimit        = 100
	MaxLimit            = 1000
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Translator executes resource queries against the store.
type Translator struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTranslator creates a Translator over the given store.
func NewTranslator(s *store.Store, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{store: s, logger: logger}
}

// Record is one hydrated result: capture metadata with the stored body's
// top-level fields merged in. On a name collision the body field wins.
type Record map[string]any

// ListOptions carries the request's filter/sort/pagination parameters.
type ListOptions struct {
	Filters map[string]string // field or field__op → value
	Sort    string            // JSON body field, empty = capture timestamp
	Order   string            // "asc" or "desc"
	Limit   int
	Offset  int
}

// ListResult is one page of records plus the unpaged total.
type ListResult struct {
	Total   int
	Limit   int
	Offset  int
	Records []Record
}

// HistoryEntry is capture metadata without the body.
type HistoryEntry struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryResult is one page of the capture timeline.
type HistoryResult struct {
	Total   int
	Limit   int
	Offset  int
	Entries []HistoryEntry
}

const recordColumns = `c.id, c.url, c.method, c.status, c.timestamp, b.body`

// List returns the page of records matching the resource pattern and
// filters, plus a total computed with the same predicate unpaged.
func (t *Translator) List(ctx context.Context, res store.Resource, opts ListOptions) (*ListResult, error) {
	limit := clamp(opts.Limit, DefaultLimit, MaxLimit)
	offset := max(opts.Offset, 0)

	where, args := t.buildWhere(res, opts.Filters)

	orderBy := "ORDER BY c.timestamp DESC"
	if opts.Sort != "" {
		if safeSortField(opts.Sort) {
			direction := "ASC"
			if strings.EqualFold(opts.Order, "desc") {
				direction = "DESC"
			}
			orderBy = fmt.Sprintf("ORDER BY b.body ->> '%s' %s", opts.Sort, direction)
		} else {
			t.logger.Warn("query: unsafe sort field dropped", "resource", res.Name, "sort", opts.Sort)
		}
	}

	listSQL := fmt.Sprintf(`SELECT %s
		FROM captures c JOIN blobs b ON c.blob_digest = b.digest
		WHERE %s %s LIMIT ? OFFSET ?`, recordColumns, where, orderBy)

	rows, err := t.store.DB.QueryContext(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, t.storageError("list", res.Name, listSQL, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, t.storageError("list scan", res.Name, listSQL, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, t.storageError("list rows", res.Name, listSQL, err)
	}

	countSQL := fmt.Sprintf(`SELECT COUNT(*)
		FROM captures c JOIN blobs b ON c.blob_digest = b.digest
		WHERE %s`, where)
	var total int
	if err := t.store.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, t.storageError("count", res.Name, countSQL, err)
	}

	return &ListResult{Total: total, Limit: limit, Offset: offset, Records: records}, nil
}

// Get returns the single record with the given capture ID, scoped to the
// resource's pattern and method.
func (t *Translator) Get(ctx context.Context, res store.Resource, captureID string) (Record, error) {
	where, args := t.buildWhere(res, nil)
	getSQL := fmt.Sprintf(`SELECT %s
		FROM captures c JOIN blobs b ON c.blob_digest = b.digest
		WHERE %s AND c.id = ?`, recordColumns, where)

	rows, err := t.store.DB.QueryContext(ctx, getSQL, append(args, captureID)...)
	if err != nil {
		return nil, t.storageError("get", res.Name, getSQL, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, t.storageError("get rows", res.Name, getSQL, err)
		}
		return nil, ErrRecordNotFound
	}
	return scanRecord(rows)
}

// Latest returns the most recently captured record for the resource.
func (t *Translator) Latest(ctx context.Context, res store.Resource) (Record, error) {
	where, args := t.buildWhere(res, nil)
	latestSQL := fmt.Sprintf(`SELECT %s
		FROM captures c JOIN blobs b ON c.blob_digest = b.digest
		WHERE %s ORDER BY c.timestamp DESC LIMIT 1`, recordColumns, where)

	rows, err := t.store.DB.QueryContext(ctx, latestSQL, args...)
	if err != nil {
		return nil, t.storageError("latest", res.Name, latestSQL, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, t.storageError("latest rows", res.Name, latestSQL, err)
		}
		return nil, ErrRecordNotFound
	}
	return scanRecord(rows)
}

// History returns the metadata-only capture timeline for the resource,
// newest first, with its own total count.
func (t *Translator) History(ctx context.Context, res store.Resource, limit, offset int) (*HistoryResult, error) {
	limit = clamp(limit, DefaultHistoryLimit, MaxHistoryLimit)
	offset = max(offset, 0)

	where, args := t.buildWhere(res, nil)
	historySQL := fmt.Sprintf(`SELECT c.id, c.url, c.method, c.status, c.timestamp
		FROM captures c WHERE %s
		ORDER BY c.timestamp DESC LIMIT ? OFFSET ?`, where)

	rows, err := t.store.DB.QueryContext(ctx, historySQL, append(args, limit, offset)...)
	if err != nil {
		return nil, t.storageError("history", res.Name, historySQL, err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.URL, &e.Method, &e.Status, &e.Timestamp); err != nil {
			return nil, t.storageError("history scan", res.Name, historySQL, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, t.storageError("history rows", res.Name, historySQL, err)
	}

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM captures c WHERE %s`, where)
	var total int
	if err := t.store.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, t.storageError("history count", res.Name, countSQL, err)
	}

	return &HistoryResult{Total: total, Limit: limit, Offset: offset, Entries: entries}, nil
}

// buildWhere assembles the AND-combined predicate set: pattern match,
// method match, then the compiled filters. No filters yields just the
// pattern/method conditions.
func (t *Translator) buildWhere(res store.Resource, filters map[string]string) (string, []any) {
	conditions := []string{"c.url REGEXP ?", "c.method = ?"}
	args := []any{CompileURLPattern(res.URLPattern), res.Method}

	preds, dropped := compileFilters(filters)
	for _, key := range dropped {
		t.logger.Warn("query: unsafe filter key dropped", "resource", res.Name, "key", key)
	}
	for _, p := range preds {
		conditions = append(conditions, p.expr)
		args = append(args, p.arg)
	}
	return strings.Join(conditions, " AND "), args
}

// scanRecord hydrates one row: metadata fields first, then the body's
// top-level fields spread over them, preserving body-wins precedence.
// A non-object body is kept whole under "body".
func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		id, url, method string
		status          int
		timestamp       int64
		body            string
	)
	if err := rows.Scan(&id, &url, &method, &status, &timestamp, &body); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec := Record{
		"id":        id,
		"url":       url,
		"method":    method,
		"status":    status,
		"timestamp": timestamp,
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err == nil {
		for k, v := range fields {
			rec[k] = v
		}
	} else {
		var value any
		if err := json.Unmarshal([]byte(body), &value); err == nil {
			rec["body"] = value
		}
	}
	return rec, nil
}

// storageError logs the failing SQL context server-side and returns an
// opaque error for the caller to surface. Raw query text and parameters
// stay in the log.
func (t *Translator) storageError(op, resource, sqlText string, err error) error {
	t.logger.Error("query: storage failure",
		"op", op, "resource", resource, "sql", sqlText, "error", err)
	return fmt.Errorf("query: %s %s: storage failure", op, resource)
}

func clamp(n, def, maxVal int) int {
	if n <= 0 {
		return def
	}
	if n > maxVal {
		return maxVal
	}
	return n
}
