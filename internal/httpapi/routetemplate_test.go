package httpapi

import "testing"

func TestNormalize(t *testing.T) {
	n := DefaultNormalizer()

	tests := []struct {
		path string
		want string
	}{
		{"/api/markets/orderbook/abc123", "/api/markets/orderbook/[param]"},
		{"/api/markets/orderbook/xyz789", "/api/markets/orderbook/[param]"},
		{"/api/markets/price/111222333", "/api/markets/price/[param]"},
		{"/api/markets/will-it-happen", "/api/markets/[param]"},
		{"/api/events/list", "/api/events/list"},
		{"/api/events/35908", "/api/events/[param]"},
		{"/api/events/some-event-slug", "/api/events/[param]"},
		{"/api/portfolio/0xabc", "/api/portfolio/[param]"},
		{"/api/portfolio/positions/0xabc", "/api/portfolio/positions/[param]"},
		{"/api/markets", "/api/markets"},
		{"/api/leaderboard", "/api/leaderboard"},
		{"/health", "/health"},
		{"/other/markets/orderbook/abc", "/other/markets/orderbook/abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.path); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNormalize_SameTemplateSharesBucket(t *testing.T) {
	n := DefaultNormalizer()

	a := n.Normalize("/api/markets/orderbook/abc123")
	b := n.Normalize("/api/markets/orderbook/xyz789")
	if a != b {
		t.Fatalf("templates differ: %q vs %q", a, b)
	}

	static := n.Normalize("/api/events/list")
	dynamic := n.Normalize("/api/events/35908")
	if static == dynamic {
		t.Fatalf("static child collapsed into dynamic template %q", dynamic)
	}
}
