package controller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/backend/dto"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

// FetchErrorMessage é a mensagem exibida quando a busca falha.
const FetchErrorMessage = "Não foi possível carregar as oportunidades agora. Verifique sua conexão e tente novamente."

// ErrSuperseded indica que a carga terminou depois de uma mais nova ter começado;
// o resultado foi descartado.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Source é o backend de oportunidades.
type Source interface {
	FetchOpportunities(ctx context.Context, bankroll float64) (dto.OpportunitiesResponse, error)
}

// SnapshotStore guarda a última carga válida (Redis no serviço).
type SnapshotStore interface {
	Save(ctx context.Context, s feed.Snapshot) error
	Load(ctx context.Context) (feed.Snapshot, bool, error)
}

// EventPublisher publica o evento feed_refreshed (Kafka no serviço).
type EventPublisher interface {
	PublishFeedRefreshed(ctx context.Context, e events.FeedRefreshed) error
}

// Controller executa as buscas e aplica o resultado no store. Snapshots,
// Events e os callbacks são opcionais.
type Controller struct {
	Log       *zap.Logger
	Store     *store.Store
	Source    Source
	Snapshots SnapshotStore
	Events    EventPublisher

	Bankroll float64
	Timeout  time.Duration // por busca; 0 = só o contexto de quem chama
	Now      func() time.Time

	OnFetch  func(mode, outcome string, d time.Duration) // métricas
	OnLoaded func(opportunities int)                      // métricas

	gen atomic.Uint64
}

func New(log *zap.Logger, st *store.Store, src Source, bankroll float64, timeout time.Duration) *Controller {
	return &Controller{
		Log:      log,
		Store:    st,
		Source:   src,
		Bankroll: bankroll,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

// Load faz exatamente uma chamada ao backend. Initial limpa os dados e mostra
// Loading; Silent mantém os dados e mostra Refreshing. Falha leva a Error com
// os dados preservados; não há retry aqui.
func (c *Controller) Load(ctx context.Context, mode store.Mode) (store.State, error) {
	gen := c.gen.Add(1)
	c.Store.Dispatch(store.LoadStarted{Mode: mode, Generation: gen})

	fctx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.Source.FetchOpportunities(fctx, c.Bankroll)
	elapsed := time.Since(start)

	if err != nil {
		c.Log.Warn("fetch opportunities failed",
			zap.Stringer("mode", mode),
			zap.Uint64("generation", gen),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		st := c.Store.Dispatch(store.LoadFailed{Generation: gen, Message: FetchErrorMessage})
		if st.Feed.Generation != gen {
			c.report(mode, "superseded", elapsed)
			return st, ErrSuperseded
		}
		c.report(mode, "error", elapsed)
		return st, fmt.Errorf("fetch opportunities: %w", err)
	}

	opps := feed.SanitizeOpportunities(res.Opportunities)
	mults := feed.SanitizeMultiples(res.Multiples)
	at := c.now()

	st := c.Store.Dispatch(store.LoadSucceeded{Generation: gen, Opportunities: opps, Multiples: mults, At: at})
	if st.Feed.Generation != gen {
		c.report(mode, "superseded", elapsed)
		return st, ErrSuperseded
	}
	c.report(mode, "ok", elapsed)
	if c.OnLoaded != nil {
		c.OnLoaded(len(opps))
	}
	c.Log.Info("feed loaded",
		zap.Stringer("mode", mode),
		zap.Uint64("generation", gen),
		zap.Int("opportunities", len(opps)),
		zap.Int("multiples", len(mults)),
		zap.Duration("latency", elapsed),
	)

	// snapshot e evento são best-effort: falha aqui não muda o estado do feed
	if c.Snapshots != nil {
		if err := c.Snapshots.Save(ctx, feed.Snapshot{Opportunities: opps, Multiples: mults, UpdatedAt: at}); err != nil {
			c.Log.Warn("snapshot save failed", zap.Error(err))
		}
	}
	if c.Events != nil {
		sum := feed.Aggregate(opps)
		ev := events.FeedRefreshed{
			Generation:    gen,
			Mode:          mode.String(),
			Opportunities: len(opps),
			Multiples:     len(mults),
			BestEV:        sum.BestEV,
			AvgEV:         sum.AvgEV,
			TotalStake:    sum.TotalStake,
			UpdatedAt:     at,
		}
		if err := c.Events.PublishFeedRefreshed(ctx, ev); err != nil {
			c.Log.Warn("feed refreshed publish failed", zap.Error(err))
		}
	}
	return st, nil
}

// Reload escolhe o modo: Silent quando já há dados exibidos, Initial caso contrário.
func (c *Controller) Reload(ctx context.Context) (store.State, error) {
	mode := store.ModeInitial
	if c.Store.State().Feed.Loaded() {
		mode = store.ModeSilent
	}
	return c.Load(ctx, mode)
}

// Restore aplica o último snapshot salvo, se houver e se nenhuma busca
// começou ainda. Devolve true quando o snapshot foi aplicado.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	if c.Snapshots == nil {
		return false, nil
	}
	snap, ok, err := c.Snapshots.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}
	st := c.Store.Dispatch(store.SnapshotRestored{Snapshot: snap})
	restored := st.Feed.Lifecycle == feed.Ready && st.Feed.LastUpdatedAt.Equal(snap.UpdatedAt)
	if restored {
		c.Log.Info("snapshot restored",
			zap.Int("opportunities", len(snap.Opportunities)),
			zap.Time("updated_at", snap.UpdatedAt),
		)
	}
	return restored, nil
}

// Poll chama Reload a cada interval até o contexto ser cancelado.
// Falhas são registradas e o poll continua.
func (c *Controller) Poll(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := c.Reload(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, ErrSuperseded) {
				c.Log.Debug("poll reload failed", zap.Error(err))
			}
		}
	}
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Controller) report(mode store.Mode, outcome string, d time.Duration) {
	if c.OnFetch != nil {
		c.OnFetch(mode.String(), outcome, d)
	}
}
