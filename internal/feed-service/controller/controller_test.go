package controller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/backend/dto"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

type sourceFunc func(ctx context.Context, bankroll float64) (dto.OpportunitiesResponse, error)

func (f sourceFunc) FetchOpportunities(ctx context.Context, bankroll float64) (dto.OpportunitiesResponse, error) {
	return f(ctx, bankroll)
}

func payload(opps string) dto.OpportunitiesResponse {
	return dto.OpportunitiesResponse{Opportunities: json.RawMessage(opps), Multiples: json.RawMessage(`[]`)}
}

const twoOpps = `[{"match":"A vs B","market":"1X2","sport":"Football","ev":5,"stake":10},{"match":"C vs D","market":"ML","sport":"NFL","ev":7,"stake":5}]`

type memSnapshots struct {
	mu    sync.Mutex
	saved []feed.Snapshot
	snap  *feed.Snapshot
	err   error
}

func (m *memSnapshots) Save(_ context.Context, s feed.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *memSnapshots) Load(context.Context) (feed.Snapshot, bool, error) {
	if m.snap == nil {
		return feed.Snapshot{}, false, m.err
	}
	return *m.snap, true, nil
}

type memEvents struct{ got []events.FeedRefreshed }

func (m *memEvents) PublishFeedRefreshed(_ context.Context, e events.FeedRefreshed) error {
	m.got = append(m.got, e)
	return nil
}

var t0 = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newController(t *testing.T, src Source) *Controller {
	c := New(zaptest.NewLogger(t), store.New(), src, 100, time.Second)
	c.Now = func() time.Time { return t0 }
	return c
}

func TestLoad_InitialSuccess(t *testing.T) {
	calls := 0
	var lifecycleDuringFetch feed.Lifecycle
	var c *Controller
	c = newController(t, sourceFunc(func(ctx context.Context, bankroll float64) (dto.OpportunitiesResponse, error) {
		calls++
		assert.Equal(t, 100.0, bankroll)
		lifecycleDuringFetch = c.Store.State().Feed.Lifecycle
		return payload(twoOpps), nil
	}))
	snaps, evs := &memSnapshots{}, &memEvents{}
	c.Snapshots, c.Events = snaps, evs
	var outcomes []string
	c.OnFetch = func(mode, outcome string, _ time.Duration) { outcomes = append(outcomes, mode+":"+outcome) }

	st, err := c.Load(context.Background(), store.ModeInitial)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "exatamente uma chamada por carga")
	assert.Equal(t, feed.Loading, lifecycleDuringFetch)
	assert.Equal(t, feed.Ready, st.Feed.Lifecycle)
	assert.Len(t, st.Feed.Opportunities, 2)
	assert.NotNil(t, st.Feed.Multiples)
	assert.Equal(t, t0, st.Feed.LastUpdatedAt)
	assert.Empty(t, st.Feed.ErrorMessage)
	assert.Equal(t, []string{"initial:ok"}, outcomes)

	require.Len(t, snaps.saved, 1)
	assert.Len(t, snaps.saved[0].Opportunities, 2)
	require.Len(t, evs.got, 1)
	assert.Equal(t, 7.0, evs.got[0].BestEV)
	assert.Equal(t, "initial", evs.got[0].Mode)
}

func TestLoad_SilentFailureKeepsDataThenRetryClears(t *testing.T) {
	var fail atomic.Bool
	var lifecycleDuringFetch feed.Lifecycle
	var c *Controller
	c = newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		lifecycleDuringFetch = c.Store.State().Feed.Lifecycle
		if fail.Load() {
			return dto.OpportunitiesResponse{}, errors.New("connection refused")
		}
		return payload(twoOpps), nil
	}))

	_, err := c.Load(context.Background(), store.ModeInitial)
	require.NoError(t, err)

	fail.Store(true)
	st, err := c.Reload(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, feed.Refreshing, lifecycleDuringFetch, "com dados já carregados o reload é silencioso")
	assert.Equal(t, feed.Error, st.Feed.Lifecycle)
	assert.Equal(t, FetchErrorMessage, st.Feed.ErrorMessage)
	assert.Len(t, st.Feed.Opportunities, 2)

	fail.Store(false)
	st, err = c.Load(context.Background(), store.ModeSilent)
	require.NoError(t, err)
	assert.Equal(t, feed.Ready, st.Feed.Lifecycle)
	assert.Empty(t, st.Feed.ErrorMessage)
}

func TestLoad_InitialFailureHasNoData(t *testing.T) {
	c := newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		return dto.OpportunitiesResponse{}, errors.New("timeout")
	}))
	st, err := c.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, feed.Error, st.Feed.Lifecycle)
	assert.False(t, st.Feed.Loaded())
	assert.Empty(t, st.Feed.Opportunities)
}

func TestLoad_MalformedPayloadIsEmptyNotError(t *testing.T) {
	c := newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		return dto.OpportunitiesResponse{Opportunities: json.RawMessage(`{"x":1}`)}, nil
	}))
	st, err := c.Load(context.Background(), store.ModeInitial)
	require.NoError(t, err)
	assert.Equal(t, feed.Ready, st.Feed.Lifecycle)
	assert.NotNil(t, st.Feed.Opportunities)
	assert.Empty(t, st.Feed.Opportunities)
	assert.Empty(t, st.Feed.Multiples)
}

func TestLoad_TimeoutEndsInError(t *testing.T) {
	c := newController(t, sourceFunc(func(ctx context.Context, _ float64) (dto.OpportunitiesResponse, error) {
		<-ctx.Done()
		return dto.OpportunitiesResponse{}, ctx.Err()
	}))
	c.Timeout = 20 * time.Millisecond

	st, err := c.Load(context.Background(), store.ModeInitial)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, feed.Error, st.Feed.Lifecycle)
}

func TestLoad_StaleCompletionIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := newController(t, sourceFunc(func(ctx context.Context, _ float64) (dto.OpportunitiesResponse, error) {
		if calls.Add(1) == 1 {
			<-release // a primeira busca termina por último
			return payload(`[{"match":"velho"}]`), nil
		}
		return payload(twoOpps), nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background(), store.ModeInitial)
		done <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	st, err := c.Load(context.Background(), store.ModeSilent)
	require.NoError(t, err)
	assert.Len(t, st.Feed.Opportunities, 2)

	close(release)
	require.ErrorIs(t, <-done, ErrSuperseded)

	final := c.Store.State()
	assert.Equal(t, feed.Ready, final.Feed.Lifecycle)
	require.Len(t, final.Feed.Opportunities, 2)
	assert.Equal(t, "A vs B", final.Feed.Opportunities[0].Match)
}

func TestLoad_SnapshotFailureIsNotFatal(t *testing.T) {
	c := newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		return payload(twoOpps), nil
	}))
	c.Snapshots = &memSnapshots{err: errors.New("redis down")}

	st, err := c.Load(context.Background(), store.ModeInitial)
	require.NoError(t, err)
	assert.Equal(t, feed.Ready, st.Feed.Lifecycle)
}

func TestRestore(t *testing.T) {
	snap := feed.Snapshot{Opportunities: []feed.Opportunity{{Match: "A vs B"}}, UpdatedAt: t0.Add(-time.Hour)}
	c := newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		return payload(twoOpps), nil
	}))

	ok, err := c.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "sem store de snapshot")

	c.Snapshots = &memSnapshots{snap: &snap}
	ok, err = c.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, feed.Ready, c.Store.State().Feed.Lifecycle)

	// depois do restore, o reload é silencioso e mantém os dados até a resposta
	st, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Feed.Opportunities, 2)
	assert.Equal(t, t0, st.Feed.LastUpdatedAt)
}

func TestPollStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	c := newController(t, sourceFunc(func(context.Context, float64) (dto.OpportunitiesResponse, error) {
		calls.Add(1)
		return payload(twoOpps), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Poll(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
