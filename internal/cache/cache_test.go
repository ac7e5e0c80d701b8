package cache

import (
	"testing"
	"time"

	"github.com/chordme/songsearch/internal/models"
)

func response(total int) *models.SearchResponse {
	return &models.SearchResponse{
		Results: []*models.SearchResult{
			{Song: &models.Song{ID: "1", Title: "Amazing Grace"}, MatchType: models.MatchExactTitle,
				MatchedFields: []string{"title"}, RelevanceScore: 10.0, Rank: 1},
		},
		TotalCount: total,
	}
}

func TestCache_SetGet(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("k", response(1))

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.TotalCount != 1 || len(got.Results) != 1 {
		t.Errorf("got %+v", got)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10, 10*time.Millisecond)
	c.Set("k", response(1))
	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry returned")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry read", c.Len())
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(2, time.Minute)
	c.Set("a", response(1))
	c.Set("b", response(2))
	c.Set("c", response(3))

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("entry b should remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("entry c should remain")
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("k", response(1))

	first, _ := c.Get("k")
	first.TotalCount = 999
	first.Results[0].RelevanceScore = 0

	second, _ := c.Get("k")
	if second.TotalCount != 1 {
		t.Errorf("TotalCount = %d, caller mutation leaked into cache", second.TotalCount)
	}
	if second.Results[0].RelevanceScore != 10.0 {
		t.Error("result mutation leaked into cache")
	}
}

func TestCache_SetCopiesValue(t *testing.T) {
	c := New(10, time.Minute)
	resp := response(1)
	c.Set("k", resp)
	resp.TotalCount = 42

	got, _ := c.Get("k")
	if got.TotalCount != 1 {
		t.Errorf("TotalCount = %d, caller mutation leaked into cache", got.TotalCount)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("a", response(1))
	c.Set("b", response(2))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}
}

func TestKey_ScopeIsPartOfKey(t *testing.T) {
	filters := &models.SearchFilters{Genre: "rock"}
	a := Key("grace", filters, models.Scope{UserID: "alice"}, 0, 10)
	b := Key("grace", filters, models.Scope{UserID: "bob"}, 0, 10)
	if a == b {
		t.Error("keys for different scopes must differ")
	}
}

func TestKey_Deterministic(t *testing.T) {
	filters := &models.SearchFilters{Genre: "rock", MinTempo: 60}
	scope := models.Scope{UserID: "alice"}
	if Key("grace", filters, scope, 0, 10) != Key("grace", filters, scope, 0, 10) {
		t.Error("identical inputs produced different keys")
	}
	if Key("grace", filters, scope, 0, 10) == Key("grace", filters, scope, 10, 10) {
		t.Error("pagination must be part of the key")
	}
	if Key("grace", filters, scope, 0, 10) == Key("grace", nil, scope, 0, 10) {
		t.Error("filters must be part of the key")
	}
}
