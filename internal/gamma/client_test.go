package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcarver/marketboard/internal/models"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL, MaxRPS: 1000})
	return client, server
}

func TestListMarkets_DecodesStringifiedLists(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("limit = %q, want 5", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"id": "512329",
			"question": "Will it happen?",
			"slug": "will-it-happen",
			"outcomes": "[\"Yes\", \"No\"]",
			"outcomePrices": "[\"0.72\", \"0.28\"]",
			"clobTokenIds": "[\"111\", \"222\"]",
			"volumeNum": 1234.5,
			"liquidityNum": "678.9",
			"active": true,
			"closed": false,
			"endDateIso": "2026-11-03T00:00:00Z"
		}]`))
	})
	defer server.Close()

	markets, err := client.ListMarkets(context.Background(), models.MarketListParams{Limit: 5})
	if err != nil {
		t.Fatalf("ListMarkets returned error: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("len(markets) = %d, want 1", len(markets))
	}

	m := markets[0]
	if len(m.Outcomes) != 2 || m.Outcomes[0] != "Yes" || m.Outcomes[1] != "No" {
		t.Fatalf("Outcomes = %v, want [Yes No]", m.Outcomes)
	}
	if len(m.OutcomePrices) != 2 || m.OutcomePrices[0] != 0.72 {
		t.Fatalf("OutcomePrices = %v, want [0.72 0.28]", m.OutcomePrices)
	}
	if len(m.ClobTokenIDs) != 2 || m.ClobTokenIDs[1] != "222" {
		t.Fatalf("ClobTokenIDs = %v, want [111 222]", m.ClobTokenIDs)
	}
	if m.Volume != 1234.5 {
		t.Fatalf("Volume = %v, want 1234.5", m.Volume)
	}
	if m.Liquidity != 678.9 {
		t.Fatalf("Liquidity = %v, want 678.9 (quoted number)", m.Liquidity)
	}
	if m.EndDate.Year() != 2026 {
		t.Fatalf("EndDate = %v, want year 2026", m.EndDate)
	}
}

func TestGetMarketBySlug_MissingReturnsNil(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("slug"); got != "nope" {
			t.Errorf("slug = %q, want nope", got)
		}
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	market, err := client.GetMarketBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetMarketBySlug returned error: %v", err)
	}
	if market != nil {
		t.Fatalf("market = %+v, want nil", market)
	}
}

func TestGetEvent_NotFoundReturnsNil(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	defer server.Close()

	event, err := client.GetEvent(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if event != nil {
		t.Fatalf("event = %+v, want nil", event)
	}
}

func TestGet_UpstreamErrorSurfacesStatus(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.ListTags(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("Status = %d, want 502", apiErr.Status)
	}
}

func TestListEvents_MapsTagsAndMarkets(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("featured") != "true" {
			t.Errorf("featured = %q, want true", r.URL.Query().Get("featured"))
		}
		w.Write([]byte(`[{
			"id": "9000",
			"slug": "election-2026",
			"title": "Election 2026",
			"featured": true,
			"volume": 50000,
			"markets": [{"id": "1", "question": "Q1", "outcomes": "[\"Yes\",\"No\"]"}],
			"tags": [{"id": "2", "label": "Politics", "slug": "politics"}]
		}]`))
	})
	defer server.Close()

	events, err := client.ListEvents(context.Background(), models.EventListParams{Featured: true})
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if !e.Featured || e.Title != "Election 2026" {
		t.Fatalf("event = %+v", e)
	}
	if len(e.Markets) != 1 || len(e.Markets[0].Outcomes) != 2 {
		t.Fatalf("nested market not decoded: %+v", e.Markets)
	}
	if len(e.Tags) != 1 || e.Tags[0].Slug != "politics" {
		t.Fatalf("Tags = %+v", e.Tags)
	}
}
