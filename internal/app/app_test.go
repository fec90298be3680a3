package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/samvad-hq/vision-probe/internal/config"
	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/pkg/publishers"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "face.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestNewProberRejectsUnknownTool(t *testing.T) {
	if _, err := NewProber(context.Background(), loadConfig(t), "horoscope", io.Discard, nil); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestProberUsesConfiguredURLByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("unexpected content type %q", ct)
		}
		_, _ = w.Write([]byte(`[{"name":"Actor X","similarity":0.9}]`))
	}))
	defer srv.Close()

	cfg := loadConfig(t)
	cfg.LookalikeAPIURL = srv.URL

	p, err := NewProber(context.Background(), cfg, domain.ToolLookalike, io.Discard, nil)
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	defer p.Close()

	if p.DefaultURL() != srv.URL {
		t.Fatalf("unexpected default url %s", p.DefaultURL())
	}
	res := p.Run(context.Background(), writeImage(t), "")
	if !res.Success || hits.Load() != 1 {
		t.Fatalf("expected one successful request, got success=%v hits=%d err=%v", res.Success, hits.Load(), res.Err)
	}
}

func TestProberRecordsHistoryAndPublishes(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"animal":"Otter","reason":"Playful"}`))
	}))
	defer api.Close()

	var (
		mu       sync.Mutex
		received []publishers.Event
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		received = append(received, evt)
		mu.Unlock()
	}))
	defer hook.Close()

	dir := t.TempDir()
	pubFile := filepath.Join(dir, "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + hook.URL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := loadConfig(t)
	cfg.StorageType = "bbolt"
	cfg.BBoltPath = filepath.Join(dir, "history.db")
	cfg.PublishersFile = pubFile

	p, err := NewProber(context.Background(), cfg, domain.ToolSpirit, io.Discard, nil)
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	defer p.Close()

	res := p.Run(context.Background(), writeImage(t), api.URL)
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}

	runs, err := p.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != res.Event.RunID {
		t.Fatalf("expected the run in history, got %#v", runs)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(received))
	}
	if received[0].Source != "vision-probe" || received[0].Run.RunID != res.Event.RunID {
		t.Fatalf("unexpected published event %#v", received[0])
	}
}

func TestPublishFailureDoesNotFailRun(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"animal":"Owl","reason":"Wise"}`))
	}))
	defer api.Close()
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer hook.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[{"id":"hook","type":"http","http":{"url":"` + hook.URL + `"}}]}`
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := loadConfig(t)
	cfg.PublishersFile = pubFile

	p, err := NewProber(context.Background(), cfg, domain.ToolSpirit, io.Discard, nil)
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	defer p.Close()

	if res := p.Run(context.Background(), writeImage(t), api.URL); !res.Success {
		t.Fatalf("publish error must not fail the run: %v", res.Err)
	}
}

func TestNewProberFailsOnBadPublishersFile(t *testing.T) {
	cfg := loadConfig(t)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewProber(context.Background(), cfg, domain.ToolSpirit, io.Discard, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}
