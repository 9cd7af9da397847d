package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/ws"
)

func TestEndpoint(t *testing.T) {
	c := &WSClient{URL: "https://feed.local/", View: ws.ClientMsg{Sport: "nfl", Q: "chiefs"}}
	got, err := c.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "wss://feed.local/ws?q=chiefs&sport=nfl", got)

	c.URL = "http://localhost:8090"
	c.View = ws.ClientMsg{}
	got, err = c.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8090/ws", got)
}

func TestWSClient_ReceivesViewFromHub(t *testing.T) {
	hub := ws.NewHub(nil, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	var mu sync.Mutex
	var got []feed.RenderModel
	c := &WSClient{
		URL:  srv.URL,
		View: ws.ClientMsg{Sport: "tennis"},
		Log:  zaptest.NewLogger(t),
		OnUpdate: func(rm feed.RenderModel) {
			mu.Lock()
			got = append(got, rm)
			mu.Unlock()
		},
		Backoff: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)
	hub.Broadcast(feed.FeedState{
		Lifecycle:     feed.Ready,
		LastUpdatedAt: time.Now(),
		Opportunities: []feed.Opportunity{
			{Match: "Sinner vs Alcaraz", Sport: "Tennis", EV: 3},
			{Match: "Flamengo vs Palmeiras", Sport: "Football", EV: 5},
		},
		Multiples: []feed.Multiple{},
	})

	// o estado inicial da conexão e o broadcast podem chegar em qualquer ordem
	var loaded feed.RenderModel
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, rm := range got {
			if rm.Loaded {
				loaded = rm
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, feed.SportTennis, loaded.View.Sport)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Sinner vs Alcaraz", loaded.Items[0].Match)
	assert.Equal(t, 2, loaded.Counts.All)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWSClient_StopsWhileReconnecting(t *testing.T) {
	c := &WSClient{URL: "http://127.0.0.1:1", Log: zaptest.NewLogger(t), Backoff: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Start(ctx), context.DeadlineExceeded)
}
