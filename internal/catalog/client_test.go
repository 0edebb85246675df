package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newUpstream(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/game/versions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Token") != token {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// One record per field spelling the upstream has used for the
		// version-type reference.
		w.Write([]byte(`[
                        {"id": 1, "gameVersionTypeID": 2, "name": "1.20", "slug": "1-20"},
                        {"id": 3, "game_version_type_id": 4, "name": "1.19", "slug": "1-19"}
                ]`))
	})
	mux.HandleFunc("/api/game/version-types", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Token") != token {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 2, "name": "Minecraft 1.20", "slug": "minecraft-1-20"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchDecodesBothCollections(t *testing.T) {
	upstream := newUpstream(t, "secret")
	client := NewClient(Config{BaseURL: upstream.URL, Token: "secret"})

	versions, types, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	if versions[0].GameVersionTypeID != 2 {
		t.Fatalf("camelCase alias: type id = %d, want 2", versions[0].GameVersionTypeID)
	}
	if versions[1].GameVersionTypeID != 4 {
		t.Fatalf("snake_case alias: type id = %d, want 4", versions[1].GameVersionTypeID)
	}
	if len(types) != 1 || types[0].Slug != "minecraft-1-20" {
		t.Fatalf("unexpected version types: %+v", types)
	}
}

func TestFetchRejectedTokenIsUnavailable(t *testing.T) {
	upstream := newUpstream(t, "secret")
	client := NewClient(Config{BaseURL: upstream.URL, Token: "wrong"})

	_, _, err := client.Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestFetchMalformedBodyIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"`))
	}))
	t.Cleanup(server.Close)
	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})

	_, _, err := client.Fetch(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("got %v, want ErrDecode", err)
	}
}

func TestFetchTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})

	_, _, err := client.Fetch(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
