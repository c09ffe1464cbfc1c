package capture

import "testing"

func TestIsJSONContentType(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/json;charset=utf-8", true},
		{"APPLICATION/JSON", true},
		{"application/vnd.api+json", true},
		{"text/json", true},
		{"text/html", false},
		{"application/javascript", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsJSONContentType(tt.ct); got != tt.want {
			t.Errorf("IsJSONContentType(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestIgnoredDomain(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.google-analytics.com/collect", true},
		{"https://doubleclick.net/ad", true},
		{"https://stats.doubleclick.net/ad", true},
		{"https://shop.example.com/api/products", false},
		// Suffix match respects the label boundary.
		{"https://notdoubleclick.net/x", false},
		{"://bad url", false},
		{"/relative/path", false},
	}
	for _, tt := range tests {
		if got := IgnoredDomain(tt.url, DefaultIgnoredDomains); got != tt.want {
			t.Errorf("IgnoredDomain(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNewWatcherDefaults(t *testing.T) {
	w := NewWatcher(nil, WatcherConfig{})
	if w.SessionID() == "" {
		t.Error("session id should default to a timestamp id")
	}
	if len(w.ignored) != len(DefaultIgnoredDomains) {
		t.Errorf("ignored domains: got %d", len(w.ignored))
	}

	w = NewWatcher(nil, WatcherConfig{SessionID: "custom", IgnoredDomains: []string{"x.test"}})
	if w.SessionID() != "custom" || len(w.ignored) != 1 {
		t.Errorf("config overrides ignored: %q %v", w.SessionID(), w.ignored)
	}
}
