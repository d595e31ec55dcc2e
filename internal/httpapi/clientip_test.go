package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name: "edge proxy header wins",
			headers: map[string]string{
				"CF-Connecting-IP": "1.2.3.4",
				"X-Forwarded-For":  "5.6.7.8",
			},
			want: "1.2.3.4",
		},
		{
			name:    "real ip before forwarded for",
			headers: map[string]string{"X-Real-IP": "9.8.7.6", "X-Forwarded-For": "5.6.7.8"},
			want:    "9.8.7.6",
		},
		{
			name:    "first forwarded-for entry",
			headers: map[string]string{"X-Forwarded-For": "5.6.7.8, 9.9.9.9"},
			want:    "5.6.7.8",
		},
		{
			name:    "no relevant headers",
			headers: nil,
			want:    "anonymous",
		},
		{
			name:    "blank header values skipped",
			headers: map[string]string{"CF-Connecting-IP": "  ", "X-Forwarded-For": "5.6.7.8"},
			want:    "5.6.7.8",
		},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		if got := ClientIP(req); got != tt.want {
			t.Errorf("%s: ClientIP() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
