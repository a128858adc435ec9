package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"github.com/TheRealMothebad/Turn-Over-More-Than-6/server/engine"
)

// clientMsg is the envelope players send over the socket.
type clientMsg struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`     // resume: session uuid
	Target *int   `json:"target,omitempty"` // use: target turn order
}

// serverMsg is the envelope pushed to players.
type serverMsg struct {
	Type   string            `json:"type"`
	ID     string            `json:"id,omitempty"`
	Action *engine.Action    `json:"action,omitempty"`
	State  *engine.MatchView `json:"state,omitempty"`
	Lobby  *lobbySnapshot    `json:"lobby,omitempty"`
	Code   string            `json:"code,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

type lobbyPlayer struct {
	Name      string `json:"name"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
}

type lobbySnapshot struct {
	Name    string        `json:"name"`
	Players []lobbyPlayer `json:"players"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// sendMsg queues a message without blocking; slow consumers drop.
func (c *client) sendMsg(msg serverMsg) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	default:
	}
}

func (c *client) close(reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close(websocket.StatusNormalClosure, reason)
	})
}

// ServeWS upgrades the connection and runs the session protocol: the first
// message must be a "resume" carrying the uuid handed out by /create or
// /join; after that the socket accepts start/draw/fold/use.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && len(h.allowOrigins) > 0 && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64), done: make(chan struct{})}
	ctx := r.Context()

	go func() {
		ping := time.NewTicker(15 * time.Second)
		defer ping.Stop()
		for {
			select {
			case msg := <-c.send:
				_ = conn.Write(ctx, websocket.MessageText, msg)
			case <-ping.C:
				_ = conn.Ping(ctx)
			case <-c.done:
				return
			}
		}
	}()

	var sess *Session
	defer func() {
		if sess != nil {
			h.detach(sess, c)
		}
		c.close("bye")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var m clientMsg
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}

		if sess == nil {
			if m.Type != "resume" {
				c.sendMsg(serverMsg{Type: "error", Code: "unbound", Reason: "send resume with your id first"})
				continue
			}
			id, err := uuid.Parse(m.ID)
			if err != nil {
				c.sendMsg(serverMsg{Type: "error", Code: "unknown_session", Reason: "bad session id"})
				continue
			}
			s := h.session(id)
			if s == nil {
				c.sendMsg(serverMsg{Type: "error", Code: "unknown_session", Reason: "no such session"})
				continue
			}
			sess = s
			c.sendMsg(serverMsg{Type: "assignId", ID: s.ID.String()})
			h.attach(s, c)
			continue
		}

		switch m.Type {
		case "resume":
			c.sendMsg(serverMsg{Type: "assignId", ID: sess.ID.String()})
		case "start":
			h.start(sess)
		case "draw", "fold", "use":
			h.act(sess, m.Type, m.Target)
		default:
			c.sendMsg(serverMsg{Type: "error", Code: "bad_message", Reason: "unknown message type " + m.Type})
		}
	}
}
