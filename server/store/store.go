package store

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Archive helpers
------------------------------*/

// ArchivedPlayer is one participant's final line in a finished match.
type ArchivedPlayer struct {
	Name      string
	TurnOrder int
	Score     int
	Won       bool
}

// ArchivedMatch is written once, when a match reaches its target score.
type ArchivedMatch struct {
	LobbyUUID string
	Name      string
	Rounds    int
	Players   []ArchivedPlayer
}

// ArchiveMatch persists a finished match and returns its row id.
func (db *DB) ArchiveMatch(ctx context.Context, m ArchivedMatch) (int64, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO matches(lobby_uuid, name, rounds)
        VALUES ($1,$2,$3)
        RETURNING id
    `, m.LobbyUUID, m.Name, m.Rounds).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, p := range m.Players {
		if _, err := tx.Exec(ctx, `
            INSERT INTO match_players(match_id, name, turn_order, score, won)
            VALUES ($1,$2,$3,$4,$5)
        `, id, p.Name, p.TurnOrder, p.Score, p.Won); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit(ctx)
}

// MatchSummary is one archived match for listing endpoints.
type MatchSummary struct {
	ID        int64     `json:"id"`
	LobbyUUID string    `json:"lobby_uuid"`
	Name      string    `json:"name"`
	Rounds    int       `json:"rounds"`
	Winner    *string   `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentMatches lists the latest archived matches, newest first.
func (db *DB) RecentMatches(ctx context.Context, limit int) ([]MatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
        SELECT m.id, m.lobby_uuid, m.name, m.rounds, p.name, m.created_at
          FROM matches m
          LEFT JOIN match_players p ON p.match_id = m.id AND p.won
         ORDER BY m.id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MatchSummary{}
	for rows.Next() {
		var s MatchSummary
		if err := rows.Scan(&s.ID, &s.LobbyUUID, &s.Name, &s.Rounds, &s.Winner, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
