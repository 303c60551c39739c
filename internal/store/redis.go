package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kanban-cli/internal/model"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "kanban"

// Redis keeps the board as a JSON string and the history as a list of JSON
// entries under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects using a redis:// URL and checks the connection.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) boardKey() string   { return r.prefix + ":board" }
func (r *Redis) historyKey() string { return r.prefix + ":history" }

func (r *Redis) LoadBoard(ctx context.Context) (model.Board, bool, error) {
	raw, err := r.client.Get(ctx, r.boardKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Board{}, false, nil
	}
	if err != nil {
		return model.Board{}, false, err
	}
	b, err := decodeBoard(raw)
	if err != nil {
		return model.Board{}, false, err
	}
	return b, true, nil
}

func (r *Redis) SaveBoard(ctx context.Context, b model.Board) error {
	raw, err := encodeBoard(b, false)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.boardKey(), raw, 0).Err()
}

func (r *Redis) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	items, err := r.client.LRange(ctx, r.historyKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryEntry, 0, len(items))
	for i, it := range items {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(it), &e); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		if err := normalizeBoard(&e.Snapshot); err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// SaveHistory replaces the stored history atomically (MULTI/EXEC).
func (r *Redis) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.historyKey())
		if len(values) > 0 {
			pipe.RPush(ctx, r.historyKey(), values...)
		}
		return nil
	})
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
