package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/engine"
	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/store"
)

const maxLobbyPlayers = 8

var (
	errLobbyNotFound = errors.New("lobby not found")
	errLobbyStarted  = errors.New("game already started")
	errLobbyFull     = errors.New("lobby is full")
)

// Session binds an opaque player uuid to a lobby seat. Sockets come and go;
// the session is the durable identity, and the engine only ever sees its
// uuid string.
type Session struct {
	ID      uuid.UUID
	Name    string
	LobbyID uuid.UUID
}

// Lobby is one table: a roster before start, a live match after. Its mutex
// serializes every engine call, which is the whole concurrency contract the
// engine asks for; distinct lobbies run fully in parallel.
type Lobby struct {
	mu       sync.Mutex
	ID       uuid.UUID
	Name     string
	Host     uuid.UUID
	roster   []*Session
	match    *engine.Match
	finished bool
}

func (l *Lobby) open() bool { return l.match == nil && !l.finished }

// Hub owns lobbies, sessions, and attached sockets.
type Hub struct {
	mu       sync.RWMutex
	lobbies  map[uuid.UUID]*Lobby
	sessions map[uuid.UUID]*Session
	clients  map[uuid.UUID]*client

	db           *store.DB // nil disables archiving
	targetScore  int
	allowOrigins map[string]bool // empty allows any origin
}

func NewHub(db *store.DB, targetScore int, origins []string) *Hub {
	allow := map[string]bool{}
	for _, o := range origins {
		allow[o] = true
	}
	return &Hub{
		lobbies:      map[uuid.UUID]*Lobby{},
		sessions:     map[uuid.UUID]*Session{},
		clients:      map[uuid.UUID]*client{},
		db:           db,
		targetScore:  targetScore,
		allowOrigins: allow,
	}
}

// LobbyInfo is the lobby-list wire shape the browser client expects.
type LobbyInfo struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
}

func (h *Hub) ListLobbies() []LobbyInfo {
	h.mu.RLock()
	all := make([]*Lobby, 0, len(h.lobbies))
	for _, l := range h.lobbies {
		all = append(all, l)
	}
	h.mu.RUnlock()

	out := []LobbyInfo{}
	for _, l := range all {
		l.mu.Lock()
		if l.open() {
			out = append(out, LobbyInfo{UUID: l.ID.String(), Name: l.Name, PlayerCount: len(l.roster)})
		}
		l.mu.Unlock()
	}
	return out
}

// CreateLobby makes a lobby with the creator seated as host and returns the
// host's session id.
func (h *Hub) CreateLobby(gameName, username string) (uuid.UUID, error) {
	s := &Session{ID: uuid.New(), Name: username}
	l := &Lobby{ID: uuid.New(), Name: gameName, Host: s.ID}
	s.LobbyID = l.ID
	l.roster = append(l.roster, s)

	h.mu.Lock()
	h.lobbies[l.ID] = l
	h.sessions[s.ID] = s
	h.mu.Unlock()

	log.Printf("lobby %s (%q) created by %q", l.ID, gameName, username)
	return s.ID, nil
}

// JoinLobby seats a new player in an open lobby and returns the session id.
func (h *Hub) JoinLobby(lobbyID uuid.UUID, username string) (uuid.UUID, error) {
	l := h.lobby(lobbyID)
	if l == nil {
		return uuid.Nil, errLobbyNotFound
	}

	l.mu.Lock()
	if !l.open() {
		l.mu.Unlock()
		return uuid.Nil, errLobbyStarted
	}
	if len(l.roster) >= maxLobbyPlayers {
		l.mu.Unlock()
		return uuid.Nil, errLobbyFull
	}
	s := &Session{ID: uuid.New(), Name: username, LobbyID: l.ID}
	l.roster = append(l.roster, s)
	l.mu.Unlock()

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	h.broadcastLobby(l)
	log.Printf("%q joined lobby %s", username, lobbyID)
	return s.ID, nil
}

func (h *Hub) lobby(id uuid.UUID) *Lobby {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lobbies[id]
}

func (h *Hub) session(id uuid.UUID) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

func (h *Hub) client(sessionID uuid.UUID) *client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sessionID]
}

// attach binds a socket to a session and reflects the reconnect in match
// state.
func (h *Hub) attach(s *Session, c *client) {
	h.mu.Lock()
	if old := h.clients[s.ID]; old != nil && old != c {
		old.close("replaced by a new connection")
	}
	h.clients[s.ID] = c
	h.mu.Unlock()

	l := h.lobby(s.LobbyID)
	if l == nil {
		return
	}
	l.mu.Lock()
	inMatch := l.match != nil
	if inMatch {
		if act, err := l.match.SetConnected(engine.PlayerID(s.ID.String()), true); err == nil {
			h.fanOut(l, []engine.Action{act})
		}
	}
	l.mu.Unlock()
	if !inMatch {
		h.broadcastLobby(l)
	}
}

// detach drops the socket binding; the session and seat survive for resume.
func (h *Hub) detach(s *Session, c *client) {
	h.mu.Lock()
	if h.clients[s.ID] != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, s.ID)
	h.mu.Unlock()

	l := h.lobby(s.LobbyID)
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.match != nil {
		if act, err := l.match.SetConnected(engine.PlayerID(s.ID.String()), false); err == nil {
			h.fanOut(l, []engine.Action{act})
		}
	}
	l.mu.Unlock()
}

// start begins the match; host only, two players minimum. Roster order
// becomes turn order.
func (h *Hub) start(s *Session) {
	l := h.lobby(s.LobbyID)
	if l == nil {
		h.sendError(s, "no_lobby", "lobby no longer exists")
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.match != nil || l.finished:
		h.sendError(s, "already_started", "game already started")
		return
	case s.ID != l.Host:
		h.sendError(s, "not_host", "only the host can start the game")
		return
	case len(l.roster) < 2:
		h.sendError(s, "need_players", "need at least two players to start")
		return
	}

	seats := make([]engine.Seat, len(l.roster))
	for i, member := range l.roster {
		seats[i] = engine.Seat{ID: engine.PlayerID(member.ID.String()), Name: member.Name}
	}
	l.match = engine.NewMatch(engine.Config{TargetScore: h.targetScore}, seats, 0)

	// Members without a live socket start out disconnected.
	for _, member := range l.roster {
		if h.client(member.ID) == nil {
			_, _ = l.match.SetConnected(engine.PlayerID(member.ID.String()), false)
		}
	}

	log.Printf("lobby %s started with %d players", l.ID, len(l.roster))
	h.sendToLobby(l, serverMsg{Type: "started"})
	h.fanOutState(l)
}

// act runs one player action through the engine and broadcasts the result.
// Locking the lobby for the whole call keeps at most one action in flight
// per match.
func (h *Hub) act(s *Session, verb string, target *int) {
	l := h.lobby(s.LobbyID)
	if l == nil {
		h.sendError(s, "no_lobby", "lobby no longer exists")
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.match == nil {
		h.sendError(s, "not_started", "game has not started")
		return
	}

	pid := engine.PlayerID(s.ID.String())
	var acts []engine.Action
	var err error
	switch verb {
	case "draw":
		acts, err = l.match.Draw(pid)
	case "fold":
		acts, err = l.match.Fold(pid)
	case "use":
		if target == nil {
			h.sendError(s, "bad_message", "use requires a target")
			return
		}
		acts, err = l.match.Use(pid, *target)
	default:
		h.sendError(s, "bad_message", "unknown action "+verb)
		return
	}
	if err != nil {
		h.sendError(s, rejectCode(err), err.Error())
		return
	}

	h.fanOut(l, acts)
	if l.match.Ended() && !l.finished {
		l.finished = true
		h.archive(l)
	}
}

// fanOut broadcasts each action to every member, then a fresh per-viewer
// snapshot. Every successful mutation goes through here; the broadcast is
// part of the action contract, not an optimization.
func (h *Hub) fanOut(l *Lobby, acts []engine.Action) {
	for i := range acts {
		h.sendToLobby(l, serverMsg{Type: "action", Action: &acts[i]})
	}
	h.fanOutState(l)
}

func (h *Hub) fanOutState(l *Lobby) {
	for _, member := range l.roster {
		c := h.client(member.ID)
		if c == nil {
			continue
		}
		v := l.match.View(engine.PlayerID(member.ID.String()))
		c.sendMsg(serverMsg{Type: "state", State: &v})
	}
}

// sendToLobby sends one identical message to every attached member.
func (h *Hub) sendToLobby(l *Lobby, msg serverMsg) {
	for _, member := range l.roster {
		if c := h.client(member.ID); c != nil {
			c.sendMsg(msg)
		}
	}
}

// broadcastLobby pushes the pre-game roster snapshot.
func (h *Hub) broadcastLobby(l *Lobby) {
	l.mu.Lock()
	snap := lobbySnapshot{Name: l.Name}
	for _, member := range l.roster {
		p := lobbyPlayer{Name: member.Name, Host: member.ID == l.Host}
		if h.client(member.ID) != nil {
			p.Connected = true
		}
		snap.Players = append(snap.Players, p)
	}
	members := append([]*Session{}, l.roster...)
	l.mu.Unlock()

	for _, member := range members {
		if c := h.client(member.ID); c != nil {
			c.sendMsg(serverMsg{Type: "lobby", Lobby: &snap})
		}
	}
}

func (h *Hub) sendError(s *Session, code, reason string) {
	if c := h.client(s.ID); c != nil {
		c.sendMsg(serverMsg{Type: "error", Code: code, Reason: reason})
	}
}

// archive persists the finished match off the action path; failures are
// logged and never affect the table. Caller holds the lobby lock.
func (h *Hub) archive(l *Lobby) {
	v := l.match.View("")
	rec := store.ArchivedMatch{
		LobbyUUID: l.ID.String(),
		Name:      l.Name,
		Rounds:    v.Round - 1,
	}
	for _, p := range v.Players {
		rec.Players = append(rec.Players, store.ArchivedPlayer{
			Name:      p.Name,
			TurnOrder: p.Order,
			Score:     p.Score,
			Won:       v.Winner != nil && *v.Winner == p.Order,
		})
	}
	log.Printf("lobby %s finished after %d rounds", l.ID, rec.Rounds)

	if h.db == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if id, err := h.db.ArchiveMatch(ctx, rec); err != nil {
			log.Printf("archive of lobby %s failed: %v", l.ID, err)
		} else {
			log.Printf("lobby %s archived as match %d", l.ID, id)
		}
	}()
}

func rejectCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, engine.ErrUnplayedSpecial):
		return "unplayed_special"
	case errors.Is(err, engine.ErrForcedDrawPending):
		return "forced_draw_pending"
	case errors.Is(err, engine.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, engine.ErrNoSpecialHeld):
		return "no_special_held"
	case errors.Is(err, engine.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, engine.ErrMatchOver):
		return "match_over"
	default:
		return "rejected"
	}
}
