package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/registry"
	"github.com/Rostezkiy/spectre/store"
)

// Query parameters reserved for pagination and ordering. Everything else
// in the query string is a filter on the record body.
var reservedParams = map[string]bool{
	"limit":  true,
	"offset": true,
	"sort":   true,
	"order":  true,
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "spectre",
		"resources": s.registry.Names(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleList serves GET /api/{resource}. Filters come from the query
// string; limit/offset/sort/order are reserved.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolveResource(w, r)
	if !ok {
		return
	}

	opts := query.ListOptions{
		Filters: map[string]string{},
		Sort:    r.URL.Query().Get("sort"),
		Order:   r.URL.Query().Get("order"),
		Limit:   intParam(r, "limit"),
		Offset:  intParam(r, "offset"),
	}
	for key, values := range r.URL.Query() {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		opts.Filters[key] = values[0]
	}

	result, err := s.translator.List(r.Context(), res, opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resource": res.Name,
		"total":    result.Total,
		"limit":    result.Limit,
		"offset":   result.Offset,
		"data":     result.Records,
	})
}

// handleGet serves GET /api/{resource}/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolveResource(w, r)
	if !ok {
		return
	}

	rec, err := s.translator.Get(r.Context(), res, chi.URLParam(r, "id"))
	if errors.Is(err, query.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleLatest serves GET /api/{resource}/latest.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolveResource(w, r)
	if !ok {
		return
	}

	rec, err := s.translator.Latest(r.Context(), res)
	if errors.Is(err, query.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "no captures for resource")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleHistory serves GET /api/{resource}/history: the capture
// timeline without bodies.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolveResource(w, r)
	if !ok {
		return
	}

	result, err := s.translator.History(r.Context(), res,
		intParam(r, "limit"), intParam(r, "offset"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resource": res.Name,
		"total":    result.Total,
		"limit":    result.Limit,
		"offset":   result.Offset,
		"history":  result.Entries,
	})
}

// resolveResource looks up the {resource} URL parameter in the registry.
// On a miss it writes the 404 (with the known names, so a caller can
// self-correct) and reports false.
func (s *Server) resolveResource(w http.ResponseWriter, r *http.Request) (store.Resource, bool) {
	name := chi.URLParam(r, "resource")
	res, err := s.registry.Get(name)
	if err != nil {
		if errors.Is(err, registry.ErrResourceNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":     "unknown resource: " + name,
				"resources": s.registry.Names(),
			})
			return store.Resource{}, false
		}
		s.internalError(w, r, err)
		return store.Resource{}, false
	}
	return res, true
}

// internalError answers with a generic 500; the underlying detail stays
// in the server log.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("api: request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
