package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/engine"
)

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("%s %s: bad JSON body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, parsed
}

func TestHealth(t *testing.T) {
	r := Router(newTestHub(), nil)
	rec, body := doJSON(t, r, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestCreateJoinEndpoints(t *testing.T) {
	h := newTestHub()
	r := Router(h, nil)

	rec, body := doJSON(t, r, http.MethodPost, "/create", `{"game_name":"table","username":"ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	hostUUID, ok := body["host_uuid"].(string)
	if !ok {
		t.Fatalf("create: body %v", body)
	}
	host := h.session(uuid.MustParse(hostUUID))
	if host == nil {
		t.Fatal("create did not register a session")
	}

	_, listing := doJSON(t, r, http.MethodGet, "/games", "")
	lobbies := listing["lobbies"].([]any)
	if len(lobbies) != 1 {
		t.Fatalf("got %d lobbies, want 1", len(lobbies))
	}
	gameUUID := lobbies[0].(map[string]any)["uuid"].(string)

	rec, body = doJSON(t, r, http.MethodPost, "/join", `{"game_uuid":"`+gameUUID+`","username":"ben"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join: status %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := body["player_uuid"].(string); !ok {
		t.Fatalf("join: body %v", body)
	}

	_, listing = doJSON(t, r, http.MethodGet, "/games", "")
	count := listing["lobbies"].([]any)[0].(map[string]any)["playerCount"].(float64)
	if count != 2 {
		t.Fatalf("playerCount = %v, want 2", count)
	}
}

func TestCreateJoinValidation(t *testing.T) {
	r := Router(newTestHub(), nil)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/create", `{"game_name":"","username":"ana"}`, http.StatusBadRequest},
		{http.MethodPost, "/create", `not json`, http.StatusBadRequest},
		{http.MethodPost, "/join", `{"game_uuid":"nope","username":"ben"}`, http.StatusBadRequest},
		{http.MethodPost, "/join", `{"game_uuid":"` + uuid.NewString() + `","username":"ben"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		rec, _ := doJSON(t, r, tc.method, tc.path, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s %s %q: status %d, want %d", tc.method, tc.path, tc.body, rec.Code, tc.want)
		}
	}
}

func TestMatchesWithoutDatabase(t *testing.T) {
	r := Router(newTestHub(), nil)
	rec, body := doJSON(t, r, http.MethodGet, "/api/matches", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	rows, ok := body["rows"].([]any)
	if !ok || len(rows) != 0 {
		t.Fatalf("body = %v, want empty rows", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewHub(nil, engine.DefaultTargetScore, []string{"http://localhost:5173"})
	r := Router(h, nil)

	req := httptest.NewRequest(http.MethodOptions, "/create", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin got header %q", got)
	}
}
