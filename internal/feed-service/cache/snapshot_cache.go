package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// DefaultKey guarda a última carga bem-sucedida do feed.
const DefaultKey = "feed:snapshot:latest"

// SnapshotCache persiste no Redis o último feed válido, para que um
// restart do serviço mostre dados (stale) enquanto busca os novos.
type SnapshotCache struct {
	R   *redis.Client
	Key string
	TTL time.Duration
}

func New(r *redis.Client, key string, ttl time.Duration) *SnapshotCache {
	if key == "" {
		key = DefaultKey
	}
	return &SnapshotCache{R: r, Key: key, TTL: ttl}
}

// Save grava o snapshot. TTL <= 0 grava sem expiração.
func (c *SnapshotCache) Save(ctx context.Context, s feed.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	ttl := c.TTL
	if ttl < 0 {
		ttl = 0
	}
	return c.R.Set(ctx, c.Key, b, ttl).Err()
}

// Load devolve (snapshot, true) quando existe um snapshot legível.
// Conteúdo corrompido é tratado como ausente.
func (c *SnapshotCache) Load(ctx context.Context) (feed.Snapshot, bool, error) {
	var s feed.Snapshot
	b, err := c.R.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return feed.Snapshot{}, false, nil
	}
	return s, true, nil
}
