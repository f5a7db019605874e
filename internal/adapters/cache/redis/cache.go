// Package redis guarda salidas del workflow por (medicamento, fecha de cirugía, usuario).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"preop-drug-check/internal/ports/workflow"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "preop:result:"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewClient crea el cliente y verifica conexión.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

type entry struct {
	RunID string `json:"run_id,omitempty"`
	Text  string `json:"text"`
}

// ResultCache implementa checks.ResultCache.
type ResultCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewResultCache(rdb *goredis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl}
}

func (c *ResultCache) Get(ctx context.Context, req workflow.Request) (workflow.Output, bool, error) {
	raw, err := c.rdb.Get(ctx, key(req)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return workflow.Output{}, false, nil
		}
		return workflow.Output{}, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Text == "" {
		// entrada corrupta: se trata como miss
		return workflow.Output{}, false, nil
	}
	return workflow.Output{RunID: e.RunID, Text: e.Text, HasText: true}, true, nil
}

// Set solo guarda salidas con texto.
func (c *ResultCache) Set(ctx context.Context, req workflow.Request, out workflow.Output) error {
	if !out.HasText {
		return nil
	}
	b, err := json.Marshal(entry{RunID: out.RunID, Text: out.Text})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(req), b, c.ttl).Err()
}

// key distingue mayúsculas y usuario: cada request del workflow tiene su entrada.
func key(req workflow.Request) string {
	return keyPrefix + req.SurgeryDate + ":" + strings.TrimSpace(req.User) + ":" + strings.TrimSpace(req.Drug)
}
