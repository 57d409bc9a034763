package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/mkarras/robochess/pkg/matchdto"
)

// Repository persists finished match results in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
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

// SaveResult upserts a finished match. Active matches are skipped; the live
// store owns those.
func (r *Repository) SaveResult(ctx context.Context, rec *matchdto.MatchRecord) error {
	if r == nil || r.db == nil || rec == nil {
		return nil
	}
	if rec.Status == matchdto.StatusActive {
		return nil
	}

	movesRaw, err := json.Marshal(rec.Moves)
	if err != nil {
		return fmt.Errorf("marshal moves: %w", err)
	}
	duration := rec.UpdatedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO matches (
	        match_id, status, result, result_method, moves,
	        started_at, ended_at, duration_ms
	      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	      ON CONFLICT (match_id) DO UPDATE SET
	        status=EXCLUDED.status,
	        result=EXCLUDED.result,
	        result_method=EXCLUDED.result_method,
	        moves=EXCLUDED.moves,
	        started_at=EXCLUDED.started_at,
	        ended_at=EXCLUDED.ended_at,
	        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		rec.ID, rec.Status, rec.Result, strings.TrimSpace(rec.ResultMethod),
		string(movesRaw), rec.StartedAt, rec.UpdatedAt, duration,
	)
	return err
}
