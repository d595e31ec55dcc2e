package clob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL, MaxRPS: 1000})
	return client, server
}

func TestOrderBook_ParsesStringLevels(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/book" {
			t.Errorf("path = %q, want /book", r.URL.Path)
		}
		if r.URL.Query().Get("token_id") != "tok-1" {
			t.Errorf("token_id = %q, want tok-1", r.URL.Query().Get("token_id"))
		}
		w.Write([]byte(`{
			"market": "0xabc",
			"asset_id": "tok-1",
			"bids": [{"price": "0.45", "size": "120.5"}],
			"asks": [{"price": "0.47", "size": "80"}],
			"timestamp": "1717243200000"
		}`))
	})
	defer server.Close()

	book, err := client.OrderBook(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("OrderBook returned error: %v", err)
	}
	if book.Market != "0xabc" {
		t.Fatalf("Market = %q, want 0xabc", book.Market)
	}
	if len(book.Bids) != 1 || book.Bids[0].Price != 0.45 || book.Bids[0].Size != 120.5 {
		t.Fatalf("Bids = %+v", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].Price != 0.47 {
		t.Fatalf("Asks = %+v", book.Asks)
	}
	if book.Timestamp.IsZero() {
		t.Fatal("Timestamp not parsed from millis")
	}
}

func TestMidpoint(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mid": "0.465"}`))
	})
	defer server.Close()

	price, err := client.Midpoint(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Midpoint returned error: %v", err)
	}
	if price.Midpoint != 0.465 {
		t.Fatalf("Midpoint = %v, want 0.465", price.Midpoint)
	}
}

func TestMidpoint_BadPayload(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mid": "not-a-number"}`))
	})
	defer server.Close()

	if _, err := client.Midpoint(context.Background(), "tok-1"); err == nil {
		t.Fatal("expected error for unparseable midpoint")
	}
}

func TestPriceHistory(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(`{"history": [{"t": 1717243200, "p": 0.51}, {"t": 1717246800, "p": 0.55}]}`))
	})
	defer server.Close()

	history, err := client.PriceHistory(context.Background(), "tok-1", "1d")
	if err != nil {
		t.Fatalf("PriceHistory returned error: %v", err)
	}
	if len(history.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(history.History))
	}
	if history.History[1].Price != 0.55 {
		t.Fatalf("History[1].Price = %v, want 0.55", history.History[1].Price)
	}
	if history.History[0].Timestamp.Unix() != 1717243200 {
		t.Fatalf("History[0].Timestamp = %v", history.History[0].Timestamp)
	}
}
