// Package archive keeps match history outside the process: live match
// state in Redis for operators and dashboards, finished results in
// Postgres. Both stores are optional; the coordinator degrades to logging
// when they are absent.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkarras/robochess/pkg/matchdto"
)

const matchTTL = 7 * 24 * time.Hour

// Store is the Redis-backed live match archive.
type Store struct {
	rdb *redis.Client
}

func NewStore(redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// SaveMatch overwrites the archived record and marks it the latest match.
func (s *Store) SaveMatch(ctx context.Context, rec *matchdto.MatchRecord) error {
	if s == nil || s.rdb == nil || rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal match record: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, matchKey(rec.ID), raw, matchTTL)
	pipe.Set(ctx, latestKey(), rec.ID, matchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save match %s: %w", rec.ID, err)
	}
	return nil
}

// LoadMatch returns the record by id, or nil when absent.
func (s *Store) LoadMatch(ctx context.Context, id string) (*matchdto.MatchRecord, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, matchKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec matchdto.MatchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", id, err)
	}
	return &rec, nil
}

// LatestMatch returns the most recently saved record, or nil.
func (s *Store) LatestMatch(ctx context.Context) (*matchdto.MatchRecord, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	id, err := s.rdb.Get(ctx, latestKey()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.LoadMatch(ctx, id)
}

func matchKey(id string) string { return "robochess:match:" + strings.TrimSpace(id) }
func latestKey() string         { return "robochess:match:latest" }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
