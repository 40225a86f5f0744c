package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "go generics" || body["search_depth"] != "basic" || body["max_results"] != float64(3) {
			t.Errorf("body = %v", body)
		}
		io.WriteString(w, `{"query":"go generics","results":[{"title":"T","url":"https://go.dev","content":"C","score":0.9}]}`)
	}))
	defer srv.Close()

	c := NewTavily("key", time.Second)
	c.url = srv.URL

	results, err := c.Search(context.Background(), "go generics", Options{Depth: "basic", MaxResults: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://go.dev" || results[0].Score != 0.9 {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTavily("key", time.Second)
	c.url = srv.URL

	if _, err := c.Search(context.Background(), "q", Options{}); err == nil {
		t.Error("expected error for 401")
	}
}

func TestSearchNoKey(t *testing.T) {
	c := NewTavily("", time.Second)
	if _, err := c.Search(context.Background(), "q", Options{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
