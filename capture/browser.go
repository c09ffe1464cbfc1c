// Package capture drives a headless Chrome session and records the JSON
// responses the page traffic produces. The browser lifecycle lives in
// Manager; Watcher hooks the network events of a single page.
package capture

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// BrowserConfig configures the browser manager.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls whether the launched Chrome shows a window.
	// A visible window lets the operator drive the session by hand.
	Headless bool

	Logger *slog.Logger
}

// Manager owns the Chrome process and the Rod connection to it.
type Manager struct {
	cfg     BrowserConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg BrowserConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance) and returns
// the Rod browser handle.
func (m *Manager) Start() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("capture: browser manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	log := m.cfg.Logger
	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("capture: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(m.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("capture: launch browser: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("capture: launched local chrome", "headless", m.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("capture: connect browser: %w", err)
	}
	m.browser = b
	return b, nil
}

// NewPage opens a fresh tab with stealth applied.
func (m *Manager) NewPage() (*rod.Page, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()

	if b == nil {
		return nil, fmt.Errorf("capture: browser not started")
	}
	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("capture: create page: %w", err)
	}
	return page, nil
}

// Close shuts down Chrome and its launcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
