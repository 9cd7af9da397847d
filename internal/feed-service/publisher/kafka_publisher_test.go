package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func TestKafkaPublisher_KeysAndPayload(t *testing.T) {
	refreshed, exported := &fakeWriter{}, &fakeWriter{}
	p := &KafkaPublisher{refreshed: refreshed, exported: exported, log: zaptest.NewLogger(t)}
	ctx := context.Background()

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.PublishFeedRefreshed(ctx, events.FeedRefreshed{Generation: 42, Mode: "silent", Opportunities: 3, UpdatedAt: at}))
	require.NoError(t, p.PublishBetExported(ctx, events.BetExported{ExportID: "e-1", Key: "a vs b|1x2|bet365", Line: "Jogo: A vs B"}))

	require.Len(t, refreshed.msgs, 1)
	assert.Equal(t, "42", string(refreshed.msgs[0].Key))
	var fr events.FeedRefreshed
	require.NoError(t, json.Unmarshal(refreshed.msgs[0].Value, &fr))
	assert.Equal(t, 3, fr.Opportunities)
	assert.Equal(t, "silent", fr.Mode)

	require.Len(t, exported.msgs, 1)
	assert.Equal(t, "a vs b|1x2|bet365", string(exported.msgs[0].Key))

	require.NoError(t, p.Close())
	assert.True(t, refreshed.closed)
	assert.True(t, exported.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &KafkaPublisher{refreshed: &fakeWriter{err: boom}, exported: &fakeWriter{err: boom}, log: zaptest.NewLogger(t)}

	err := p.PublishFeedRefreshed(context.Background(), events.FeedRefreshed{Generation: 1})
	assert.ErrorIs(t, err, boom)
	err = p.PublishBetExported(context.Background(), events.BetExported{ExportID: "x"})
	assert.ErrorIs(t, err, boom)
}
