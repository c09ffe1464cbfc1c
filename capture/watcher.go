package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Rostezkiy/spectre/idgen"
	"github.com/Rostezkiy/spectre/store"
)

// WatcherConfig configures a capture session.
type WatcherConfig struct {
	// SessionID tags every capture of this run. Empty = timestamp id.
	SessionID string

	// IgnoredDomains replaces DefaultIgnoredDomains when non-empty.
	IgnoredDomains []string

	Logger *slog.Logger
}

// Watcher records JSON responses from a page's network traffic into the
// store. One Watcher handles one page.
type Watcher struct {
	store     *store.Store
	sessionID string
	ignored   []string
	logger    *slog.Logger

	captured atomic.Int64

	// request id → HTTP method, fed by request events, read by response
	// events. Entries are deleted once the response is handled.
	methods sync.Map
}

// NewWatcher creates a Watcher writing to the given store.
func NewWatcher(s *store.Store, cfg WatcherConfig) *Watcher {
	if cfg.SessionID == "" {
		cfg.SessionID = idgen.Session()()
	}
	if len(cfg.IgnoredDomains) == 0 {
		cfg.IgnoredDomains = DefaultIgnoredDomains
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		store:     s,
		sessionID: cfg.SessionID,
		ignored:   cfg.IgnoredDomains,
		logger:    cfg.Logger,
	}
}

// SessionID returns the session tag of this run.
func (w *Watcher) SessionID() string { return w.sessionID }

// Captured returns the number of responses stored so far.
func (w *Watcher) Captured() int64 { return w.captured.Load() }

// Run attaches to the page's network events, navigates to startURL when
// given, and captures until ctx is cancelled or the page goes away.
// Navigation failure is non-fatal: the operator can still browse by hand
// and the hooks stay armed.
func (w *Watcher) Run(ctx context.Context, page *rod.Page, startURL string) error {
	page = page.Context(ctx)

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return fmt.Errorf("capture: enable network domain: %w", err)
	}

	wait := page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			w.methods.Store(e.RequestID, e.Request.Method)
		},
		func(e *proto.NetworkResponseReceived) {
			w.handleResponse(ctx, page, e)
		},
	)
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()

	w.logger.Info("capture: session started", "session_id", w.sessionID)

	if startURL != "" {
		if err := page.Timeout(30 * time.Second).Navigate(startURL); err != nil {
			w.logger.Warn("capture: navigation failed", "url", startURL, "error", err)
		} else if err := page.Timeout(30 * time.Second).WaitLoad(); err != nil {
			w.logger.Warn("capture: page load timeout", "url", startURL, "error", err)
		}
	}

	select {
	case <-ctx.Done():
	case <-done:
	}

	w.logger.Info("capture: session stopped",
		"session_id", w.sessionID, "captured", w.captured.Load())
	return nil
}

// handleResponse filters one response and stores it when it passes.
// Every skip path is silent or debug-logged: page traffic is noisy and
// a failed body fetch must never abort the session.
func (w *Watcher) handleResponse(ctx context.Context, page *rod.Page, e *proto.NetworkResponseReceived) {
	url := e.Response.URL
	method := "GET"
	if m, ok := w.methods.LoadAndDelete(e.RequestID); ok {
		method = m.(string)
	}

	if IgnoredDomain(url, w.ignored) {
		return
	}
	if !IsJSONContentType(responseContentType(e.Response)) {
		return
	}

	body, err := fetchBody(page, e.RequestID)
	if err != nil {
		w.logger.Warn("capture: body fetch failed", "url", url, "error", err)
		return
	}

	digest, err := w.store.PutBlob(ctx, body)
	if err != nil {
		if errors.Is(err, store.ErrMalformedBody) {
			w.logger.Debug("capture: non-json body skipped", "url", url)
		} else {
			w.logger.Error("capture: store blob failed", "url", url, "error", err)
		}
		return
	}

	_, err = w.store.InsertCapture(ctx, &store.Capture{
		SessionID:  w.sessionID,
		URL:        url,
		Method:     method,
		Headers:    headerMap(e.Response.Headers),
		Status:     e.Response.Status,
		BlobDigest: digest,
	})
	if err != nil {
		w.logger.Error("capture: store capture failed", "url", url, "error", err)
		return
	}

	n := w.captured.Add(1)
	w.logger.Info("capture: stored response",
		"method", method, "url", url, "status", e.Response.Status, "bytes", len(body))
	if n%10 == 0 {
		w.logger.Info("capture: progress", "session_id", w.sessionID, "captured", n)
	}
}

// responseContentType prefers the Content-Type header and falls back to
// the browser's sniffed MIME type.
func responseContentType(r *proto.NetworkResponse) string {
	for name, value := range r.Headers {
		if name == "Content-Type" || name == "content-type" {
			return value.Str()
		}
	}
	return r.MIMEType
}

func fetchBody(page *rod.Page, id proto.NetworkRequestID) ([]byte, error) {
	res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(page)
	if err != nil {
		return nil, err
	}
	if res.Base64Encoded {
		return base64.StdEncoding.DecodeString(res.Body)
	}
	return []byte(res.Body), nil
}

func headerMap(h proto.NetworkHeaders) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, value := range h {
		out[name] = value.Str()
	}
	return out
}
