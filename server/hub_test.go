package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/engine"
)

func newTestHub() *Hub {
	return NewHub(nil, engine.DefaultTargetScore, nil)
}

func TestCreateJoinList(t *testing.T) {
	h := newTestHub()

	hostID, err := h.CreateLobby("friday night", "ana")
	if err != nil {
		t.Fatalf("CreateLobby: %v", err)
	}
	host := h.session(hostID)
	if host == nil {
		t.Fatal("host session not registered")
	}

	lobbies := h.ListLobbies()
	if len(lobbies) != 1 {
		t.Fatalf("got %d lobbies, want 1", len(lobbies))
	}
	if lobbies[0].Name != "friday night" || lobbies[0].PlayerCount != 1 {
		t.Fatalf("unexpected listing %+v", lobbies[0])
	}

	lobbyID := uuid.MustParse(lobbies[0].UUID)
	joinID, err := h.JoinLobby(lobbyID, "ben")
	if err != nil {
		t.Fatalf("JoinLobby: %v", err)
	}
	if h.session(joinID) == nil {
		t.Fatal("joiner session not registered")
	}
	if got := h.ListLobbies()[0].PlayerCount; got != 2 {
		t.Fatalf("playerCount = %d, want 2", got)
	}
}

func TestJoinRejections(t *testing.T) {
	h := newTestHub()

	if _, err := h.JoinLobby(uuid.New(), "ghost"); !errors.Is(err, errLobbyNotFound) {
		t.Fatalf("join missing lobby: %v", err)
	}

	hostID, _ := h.CreateLobby("packed", "host")
	lobbyID := h.session(hostID).LobbyID
	for i := 1; i < maxLobbyPlayers; i++ {
		if _, err := h.JoinLobby(lobbyID, fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, err := h.JoinLobby(lobbyID, "overflow"); !errors.Is(err, errLobbyFull) {
		t.Fatalf("join full lobby: %v", err)
	}

	hostID2, _ := h.CreateLobby("running", "host")
	lobbyID2 := h.session(hostID2).LobbyID
	if _, err := h.JoinLobby(lobbyID2, "p1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	h.start(h.session(hostID2))
	if h.lobby(lobbyID2).match == nil {
		t.Fatal("start did not create a match")
	}
	if _, err := h.JoinLobby(lobbyID2, "late"); !errors.Is(err, errLobbyStarted) {
		t.Fatalf("join started lobby: %v", err)
	}
	if got := len(h.ListLobbies()); got != 1 {
		t.Fatalf("started lobby still listed, got %d open", got)
	}
}

func TestStartRequirements(t *testing.T) {
	h := newTestHub()
	hostID, _ := h.CreateLobby("table", "host")
	host := h.session(hostID)
	l := h.lobby(host.LobbyID)

	h.start(host)
	if l.match != nil {
		t.Fatal("started with a single player")
	}

	joinID, _ := h.JoinLobby(host.LobbyID, "guest")
	h.start(h.session(joinID))
	if l.match != nil {
		t.Fatal("non-host started the match")
	}

	h.start(host)
	if l.match == nil {
		t.Fatal("host could not start with two players")
	}

	before := l.match
	h.start(host)
	if l.match != before {
		t.Fatal("second start replaced the match")
	}
}

func TestActFlow(t *testing.T) {
	h := newTestHub()
	hostID, _ := h.CreateLobby("table", "host")
	host := h.session(hostID)
	joinID, _ := h.JoinLobby(host.LobbyID, "guest")
	guest := h.session(joinID)
	h.start(host)

	l := h.lobby(host.LobbyID)
	if got := l.match.CurrentTurn(); got != 0 {
		t.Fatalf("current turn = %d, want 0", got)
	}

	// Out of turn is silently rejected toward the (absent) socket and must
	// not advance the match.
	h.act(guest, "draw", nil)
	if got := l.match.CurrentTurn(); got != 0 {
		t.Fatalf("turn moved on rejected action, now %d", got)
	}

	h.act(host, "draw", nil)
	v := l.match.View(engine.PlayerID(host.ID.String()))
	if v.Players[0].HandCount != 1 {
		t.Fatalf("host hand count = %d after draw, want 1", v.Players[0].HandCount)
	}

	h.act(host, "use", nil)
	if l.match.Ended() {
		t.Fatal("malformed use ended the match")
	}
}

func TestRejectCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{engine.ErrNotYourTurn, "not_your_turn"},
		{engine.ErrUnplayedSpecial, "unplayed_special"},
		{engine.ErrForcedDrawPending, "forced_draw_pending"},
		{engine.ErrInvalidTarget, "invalid_target"},
		{engine.ErrNoSpecialHeld, "no_special_held"},
		{engine.ErrUnknownPlayer, "unknown_player"},
		{engine.ErrMatchOver, "match_over"},
		{errors.New("boom"), "rejected"},
	}
	for _, tc := range cases {
		if got := rejectCode(tc.err); got != tc.want {
			t.Fatalf("rejectCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
