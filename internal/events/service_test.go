package events

import (
	"context"
	"errors"
	"testing"

	"github.com/jcarver/marketboard/internal/cache"
	"github.com/jcarver/marketboard/internal/models"
)

type fakeGamma struct {
	events     []models.Event
	eventsErr  error
	event      *models.Event
	tags       []models.Tag
	listCalls  int
	tagsCalls  int
	lastParams models.EventListParams
}

func (f *fakeGamma) ListEvents(ctx context.Context, params models.EventListParams) ([]models.Event, error) {
	f.listCalls++
	f.lastParams = params
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeGamma) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return f.event, nil
}

func (f *fakeGamma) ListTags(ctx context.Context) ([]models.Tag, error) {
	f.tagsCalls++
	return f.tags, nil
}

func TestList_ClampsLimit(t *testing.T) {
	gamma := &fakeGamma{events: []models.Event{{ID: "1"}}}
	svc := NewService(gamma, nil, nil)

	resp, err := svc.List(context.Background(), models.EventListParams{Limit: 5000})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if resp.Limit != maxLimit {
		t.Fatalf("Limit = %d, want %d", resp.Limit, maxLimit)
	}
}

func TestFeatured_RequestsFeaturedActiveEvents(t *testing.T) {
	gamma := &fakeGamma{events: []models.Event{{ID: "1", Featured: true}}}
	svc := NewService(gamma, nil, nil)

	if _, err := svc.Featured(context.Background()); err != nil {
		t.Fatalf("Featured returned error: %v", err)
	}
	if !gamma.lastParams.Featured {
		t.Fatal("Featured param not set on upstream call")
	}
	if gamma.lastParams.Active == nil || !*gamma.lastParams.Active {
		t.Fatal("Active param not set on upstream call")
	}
}

func TestGet_UnknownEventReturnsNil(t *testing.T) {
	svc := NewService(&fakeGamma{}, nil, nil)

	event, err := svc.Get(context.Background(), "999")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if event != nil {
		t.Fatalf("event = %+v, want nil", event)
	}
}

func TestGet_EmptyIDIsServiceError(t *testing.T) {
	svc := NewService(&fakeGamma{}, nil, nil)

	_, err := svc.Get(context.Background(), "")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want *ServiceError", err)
	}
}

func TestTags_Cached(t *testing.T) {
	gamma := &fakeGamma{tags: []models.Tag{{ID: "1", Label: "Politics", Slug: "politics"}}}
	store := cache.NewMemory()
	defer store.Stop()
	svc := NewService(gamma, store, nil)

	first, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags returned error: %v", err)
	}
	second, err := svc.Tags(context.Background())
	if err != nil {
		t.Fatalf("second Tags returned error: %v", err)
	}
	if gamma.tagsCalls != 1 {
		t.Fatalf("tagsCalls = %d, want 1", gamma.tagsCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Slug != "politics" {
		t.Fatalf("tags = %+v / %+v", first, second)
	}
}

func TestList_WrapsUpstreamError(t *testing.T) {
	upstream := errors.New("gamma down")
	svc := NewService(&fakeGamma{eventsErr: upstream}, nil, nil)

	_, err := svc.List(context.Background(), models.EventListParams{})
	if !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want wrapped upstream error", err)
	}
}
