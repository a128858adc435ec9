package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/store"
)

func Router(h *Hub, db *store.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(h.allowOrigins))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})

	// Open lobbies for the browser list.
	r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"lobbies": h.ListLobbies()})
	})

	r.Post("/create", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GameName string `json:"game_name"`
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if req.GameName == "" || req.Username == "" {
			http.Error(w, "game_name and username are required", http.StatusBadRequest)
			return
		}
		id, err := h.CreateLobby(req.GameName, req.Username)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"host_uuid": id.String()})
	})

	r.Post("/join", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GameUUID string `json:"game_uuid"`
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		lobbyID, err := uuid.Parse(req.GameUUID)
		if err != nil {
			http.Error(w, "bad game_uuid", http.StatusBadRequest)
			return
		}
		if req.Username == "" {
			http.Error(w, "username is required", http.StatusBadRequest)
			return
		}
		id, err := h.JoinLobby(lobbyID, req.Username)
		if err != nil {
			code := http.StatusBadRequest
			if err == errLobbyNotFound {
				code = http.StatusNotFound
			}
			http.Error(w, err.Error(), code)
			return
		}
		writeJSON(w, map[string]any{"player_uuid": id.String()})
	})

	r.Get("/ws", h.ServeWS)

	// Archived match history; empty without a database.
	r.Get("/api/matches", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, map[string]any{"rows": []store.MatchSummary{}})
			return
		}
		rows, err := db.RecentMatches(r.Context(), 200)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, map[string]any{"rows": rows})
	})

	return r
}

func corsMiddleware(allow map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (len(allow) == 0 || allow[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
