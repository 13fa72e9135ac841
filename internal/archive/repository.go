package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Record is the durable trace of one watched game.
type Record struct {
	GameID      string
	SessionUUID string
	Winner      string // "w", "b" or "" when unknown
	Result      string // PGN result token or ""
	Reason      string
	FinalFEN    string
	PlyCount    int
	StartedAt   time.Time
	EndedAt     time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveGame upserts a finished game. Re-detections of the same ending (for
// example a reconnect replaying the end panel) overwrite in place.
func (r *Repository) SaveGame(ctx context.Context, rec *Record) error {
	if r == nil || r.db == nil || rec == nil {
		return nil
	}
	q := `INSERT INTO watched_games (
	    game_id, session_uuid, winner, result, reason,
	    final_fen, ply_count, started_at, ended_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9
	  ) ON CONFLICT (game_id) DO UPDATE SET
	    session_uuid=EXCLUDED.session_uuid,
	    winner=EXCLUDED.winner,
	    result=EXCLUDED.result,
	    reason=EXCLUDED.reason,
	    final_fen=EXCLUDED.final_fen,
	    ply_count=EXCLUDED.ply_count,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at`

	_, err := r.db.ExecContext(ctx, q,
		rec.GameID, rec.SessionUUID,
		rec.Winner, rec.Result, strings.TrimSpace(rec.Reason),
		rec.FinalFEN, rec.PlyCount,
		rec.StartedAt, rec.EndedAt,
	)
	return err
}
