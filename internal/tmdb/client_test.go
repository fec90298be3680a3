package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/vision-probe/pkg/httpclient"
)

func TestPhotoURLUsesFirstResultAndCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/3/search/person" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "k" || r.URL.Query().Get("query") != "Actor X" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1,"name":"Actor X","profile_path":"/x.jpg"},{"id":2,"profile_path":"/y.jpg"}]}`))
	}))
	defer srv.Close()

	c := NewClient(httpclient.NewRestyClient(2*time.Second), "k", srv.URL+"/3/", "https://img.test/w500")

	for i := 0; i < 2; i++ {
		got, err := c.PhotoURL(context.Background(), "Actor X")
		if err != nil {
			t.Fatalf("PhotoURL: %v", err)
		}
		if got != "https://img.test/w500/x.jpg" {
			t.Fatalf("PhotoURL = %s", got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls.Load())
	}
}

func TestPhotoURLMissingProfileIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1,"name":"Nobody","profile_path":null}]}`))
	}))
	defer srv.Close()

	c := NewClient(httpclient.NewRestyClient(2*time.Second), "k", srv.URL, "https://img.test")
	got, err := c.PhotoURL(context.Background(), "Nobody")
	if err != nil || got != "" {
		t.Fatalf("expected empty photo, got %q err=%v", got, err)
	}
}

func TestPhotoURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(httpclient.NewRestyClient(2*time.Second), "bad", srv.URL, "https://img.test")
	if _, err := c.PhotoURL(context.Background(), "Actor X"); err == nil {
		t.Fatalf("expected error on 401")
	}
}
