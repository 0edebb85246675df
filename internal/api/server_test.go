package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mirrorcat/gameversions/internal/catalog"
	"github.com/mirrorcat/gameversions/internal/mirror"
)

type fakeFetcher struct {
	err      error
	versions []catalog.Version
	types    []catalog.VersionType
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]catalog.Version, []catalog.VersionType, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.versions, f.types, nil
}

func newTestServer(t *testing.T, fetcher *fakeFetcher) *Server {
	t.Helper()
	dir := t.TempDir()

	store, err := mirror.Open(filepath.Join(dir, "mirror.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	staticDir := filepath.Join(dir, "static")
	if err := os.MkdirAll(staticDir, 0o755); err != nil {
		t.Fatalf("create static dir: %v", err)
	}
	writeStatic := func(name, content string) {
		if err := os.WriteFile(filepath.Join(staticDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeStatic("index.html", "<html><body>catalog mirror</body></html>")
	writeStatic("404.html", "<html><body>custom not found</body></html>")

	svc := mirror.NewService(store, fetcher, mirror.DefaultTTL)
	server, err := NewServer(svc, staticDir)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func postQuery(t *testing.T, server *Server, path, sql string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(sql))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpointReturnsRows(t *testing.T) {
	fetcher := &fakeFetcher{
		versions: []catalog.Version{
			{ID: 1, GameVersionTypeID: 2, Name: "1.20", Slug: "1-20"},
		},
		types: []catalog.VersionType{
			{ID: 2, Name: "Minecraft 1.20", Slug: "minecraft-1-20"},
		},
	}
	server := newTestServer(t, fetcher)

	for _, path := range []string{"/query.json", "/query"} {
		rec := postQuery(t, server, path, `SELECT * FROM versions`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body = %s", path, rec.Code, rec.Body)
		}
		var rows []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Fatalf("%s: decode response: %v", path, err)
		}
		if len(rows) != 1 {
			t.Fatalf("%s: got %d rows, want 1", path, len(rows))
		}
		if got := rows[0]["name"]; got != "1.20" {
			t.Fatalf("%s: name = %v, want 1.20", path, got)
		}
		if got := rows[0]["id"]; got != float64(1) {
			t.Fatalf("%s: id = %v (%T), want a number", path, got, got)
		}
	}
}

func TestQueryEndpointBadSQL(t *testing.T) {
	fetcher := &fakeFetcher{}
	server := newTestServer(t, fetcher)

	rec := postQuery(t, server, "/query.json", `SELEKT * FROM versions`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload["error"] == "" {
		t.Fatal("error body missing message")
	}
}

func TestQueryEndpointRefreshFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream unavailable: timeout")}
	server := newTestServer(t, fetcher)

	rec := postQuery(t, server, "/query.json", `SELECT * FROM versions`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, &fakeFetcher{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body)
	}
}

func TestStaticAndNotFound(t *testing.T) {
	server := newTestServer(t, &fakeFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/static/index.html", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "catalog mirror") {
		t.Fatalf("static index = %d %q", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("root redirect = %d, want 302", rec.Code)
	}

	for _, path := range []string{"/no-such-route", "/static/missing.css"} {
		req = httptest.NewRequest(http.MethodGet, path, nil)
		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "custom not found") {
			t.Fatalf("%s: custom 404 page not served: %q", path, rec.Body)
		}
	}
}
