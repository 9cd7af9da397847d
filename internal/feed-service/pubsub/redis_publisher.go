package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/value-bet-feed/internal/feed"
)

const ChannelFeedBroadcast = "feed_updates_broadcast"

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
	// Source identifica a réplica que publica; versões só são comparáveis
	// dentro da mesma origem.
	Source string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelFeedBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Channel() string { return b.channel }

func (b *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	return b.r.Publish(ctx, b.channel, payload).Err()
}

// PublishFeed envia o estado do feed para todas as réplicas; cada uma
// repassa aos seus clientes WebSocket com a visão de cada conexão.
// version é a versão do store que produziu o estado.
func (b *RedisBroadcaster) PublishFeed(ctx context.Context, version uint64, fs feed.FeedState) error {
	payload, err := json.Marshal(FeedUpdate{Type: TypeFeed, Source: b.Source, Version: version, Feed: fs})
	if err != nil {
		return fmt.Errorf("encode feed update: %w", err)
	}
	return b.Publish(ctx, payload)
}

const TypeFeed = "feed"

// Payload padrão trafegado no canal Redis
type FeedUpdate struct {
	Type    string         `json:"type"`
	Source  string         `json:"source,omitempty"`
	Version uint64         `json:"version,omitempty"`
	Feed    feed.FeedState `json:"feed"`
}
