package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/value-bet-feed/internal/feed"
)

func TestPublishFeed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b := NewRedisBroadcaster(rdb, "")
	b.Source = "replica-a"
	assert.Equal(t, ChannelFeedBroadcast, b.Channel())

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, b.Channel())
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	fs := feed.FeedState{
		Lifecycle:     feed.Ready,
		Generation:    3,
		LastUpdatedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Opportunities: []feed.Opportunity{{Match: "A vs B", Sport: "Football"}},
		Multiples:     []feed.Multiple{},
	}
	require.NoError(t, b.PublishFeed(ctx, 7, fs))

	select {
	case msg := <-sub.Channel():
		var upd FeedUpdate
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &upd))
		assert.Equal(t, TypeFeed, upd.Type)
		assert.Equal(t, "replica-a", upd.Source)
		assert.Equal(t, uint64(7), upd.Version)
		assert.Equal(t, uint64(3), upd.Feed.Generation)
		require.Len(t, upd.Feed.Opportunities, 1)
		assert.True(t, upd.Feed.LastUpdatedAt.Equal(fs.LastUpdatedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no message on channel")
	}
}
