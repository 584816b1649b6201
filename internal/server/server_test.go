package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"folio/internal/cache"
	"folio/internal/media"
	"folio/internal/resolver"
	"folio/internal/works"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeResolver struct {
	embed media.Embed
	err   error
	panic bool
	got   string
}

func (f *fakeResolver) Resolve(_ context.Context, rawURL string) (media.Embed, error) {
	f.got = rawURL
	if f.panic {
		panic("handler blew up")
	}
	return f.embed, f.err
}

func (f *fakeResolver) CacheStats() cache.Stats {
	return cache.Stats{Entries: 2, Hits: 5, Misses: 3}
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decoding %s: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestOEmbedStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing url", resolver.ErrMissingURL, http.StatusBadRequest, "missing url"},
		{"unsupported", resolver.ErrUnsupportedProvider, http.StatusBadRequest, "unsupported provider"},
		{"upstream", fmt.Errorf("%w: dial tcp: refused", resolver.ErrUpstreamUnavailable), http.StatusBadGateway, "oembed fetch failed"},
		{"no html", resolver.ErrNoEmbedHTML, http.StatusBadGateway, "no oembed html"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
		{"recovered panic", fmt.Errorf("%w: boom", resolver.ErrUnexpected), http.StatusInternalServerError, "unexpected error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeResolver{err: tt.err}, works.New(t.TempDir(), quietLogger), quietLogger)

			rec, body := get(t, s.Handler(), "/api/oembed?url=https%3A%2F%2Fx.com%2Fa")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestOEmbedSuccess(t *testing.T) {
	fr := &fakeResolver{embed: media.Embed{HTML: "<blockquote>hi</blockquote>", Provider: media.Twitter}}
	s := New(fr, works.New(t.TempDir(), quietLogger), quietLogger)

	rec, body := get(t, s.Handler(), "/api/oembed?url=https%3A%2F%2Ftwitter.com%2Fa%2Fstatus%2F1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if body["html"] != "<blockquote>hi</blockquote>" {
		t.Errorf("html = %v", body["html"])
	}
	if fr.got != "https://twitter.com/a/status/1" {
		t.Errorf("resolver got %q", fr.got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" && ct != "application/json; charset=UTF-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestPanicRecovered(t *testing.T) {
	s := New(&fakeResolver{panic: true}, works.New(t.TempDir(), quietLogger), quietLogger)

	rec, _ := get(t, s.Handler(), "/api/oembed?url=x")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := New(&fakeResolver{}, works.New(t.TempDir(), quietLogger), quietLogger)

	rec, body := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rec.Code, body)
	}
	c, ok := body["cache"].(map[string]any)
	if !ok || c["entries"] != float64(2) || c["hits"] != float64(5) {
		t.Errorf("cache = %v", body["cache"])
	}
}

func newCatalog(t *testing.T) *works.Catalog {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"alpha.md": "---\ntitle: Alpha\nyear: 2023\n---\nhttps://twitter.com/foo/status/1\n",
		"beta.md":  "---\ntitle: Beta\nyear: 2024\nmonth: 2\n---\nNo embeds here.\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return works.New(dir, quietLogger)
}

func TestWorksList(t *testing.T) {
	s := New(&fakeResolver{}, newCatalog(t), quietLogger)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/works", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(list) != 2 || list[0]["slug"] != "beta" || list[1]["slug"] != "alpha" {
		t.Fatalf("list = %v", list)
	}
	for _, w := range list {
		if _, ok := w["content"]; ok {
			t.Errorf("list entry %v should omit content", w["slug"])
		}
	}
}

func TestWorkDetail(t *testing.T) {
	s := New(&fakeResolver{}, newCatalog(t), quietLogger)

	tests := []struct {
		path       string
		wantStatus int
		wantError  string
	}{
		{"/api/works/alpha", http.StatusOK, ""},
		{"/api/works/gamma", http.StatusNotFound, "work not found"},
		{"/api/works/a.b", http.StatusBadRequest, "invalid slug"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, body := get(t, s.Handler(), tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				if body["error"] != tt.wantError {
					t.Errorf("error = %v, want %q", body["error"], tt.wantError)
				}
				return
			}
			embeds, _ := body["embeds"].([]any)
			if len(embeds) != 1 || embeds[0] != "https://twitter.com/foo/status/1" {
				t.Errorf("embeds = %v", body["embeds"])
			}
			work, _ := body["work"].(map[string]any)
			if work["title"] != "Alpha" {
				t.Errorf("work = %v", work)
			}
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := New(&fakeResolver{}, works.New(t.TempDir(), quietLogger), quietLogger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
