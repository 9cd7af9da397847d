package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/value-bet-feed/internal/feed-service/backend"
	snapcache "github.com/radieske/value-bet-feed/internal/feed-service/cache"
	"github.com/radieske/value-bet-feed/internal/feed-service/controller"
	httpapi "github.com/radieske/value-bet-feed/internal/feed-service/http"
	"github.com/radieske/value-bet-feed/internal/feed-service/publisher"
	"github.com/radieske/value-bet-feed/internal/feed-service/pubsub"
	"github.com/radieske/value-bet-feed/internal/feed-service/repo"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/internal/feed-service/ws"
	"github.com/radieske/value-bet-feed/internal/shared/cache"
	"github.com/radieske/value-bet-feed/internal/shared/config"
	"github.com/radieske/value-bet-feed/internal/shared/db"
	"github.com/radieske/value-bet-feed/internal/shared/logger"
	"github.com/radieske/value-bet-feed/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "feed-service"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infra: Postgres (leitura do diário), Redis (snapshot + pub/sub) e Kafka
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicFeedRefreshed, cfg.TopicBetExported, cfg.Env, log)
	defer pub.Close()
	log.Info("kafka publisher ready",
		zap.String("topic_refreshed", cfg.TopicFeedRefreshed),
		zap.String("topic_exported", cfg.TopicBetExported),
	)

	col := metrics.NewFeedCollectors(prometheus.DefaultRegisterer)

	// Estado do feed e controller de busca
	st := store.New()
	ctl := controller.New(log, st, backend.New(cfg.BackendURL, cfg.FetchTimeout), cfg.Bankroll, cfg.FetchTimeout)
	ctl.Snapshots = snapcache.New(redisClient, cfg.RedisSnapshotKey, cfg.SnapshotTTL)
	ctl.Events = pub
	ctl.OnFetch = col.ObserveFetch
	ctl.OnLoaded = col.SetOpportunities

	// Cada mudança de estado vai para o canal Redis; todas as réplicas (inclusive
	// esta) entregam aos seus WebSockets pelo subscriber
	broadcaster := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)
	broadcaster.Source = uuid.NewString()
	unsubscribe := st.Subscribe(func(s store.State) {
		pctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := broadcaster.PublishFeed(pctx, s.Version, s.Feed); err != nil {
			log.Warn("ws broadcast publish failed", zap.Error(err))
		}
	})
	defer unsubscribe()

	hub := ws.NewHub(allowOrigin(cfg.AllowedOrigins), log)
	hub.OnOpen = col.WSOpened
	hub.OnClose = col.WSClosed
	// a inscrição é confirmada antes de retornar; nenhuma mudança se perde
	subDone := ws.StartRedisSubscriber(ctx, redisClient, broadcaster.Channel(), hub, log)

	api := &httpapi.API{
		Log:            log,
		Store:          st,
		Controller:     ctl,
		Exports:        &repo.ReadRepo{DB: pg},
		Publisher:      pub,
		WS:             hub.HandleWS,
		AllowedOrigins: cfg.AllowedOrigins,
		NewID:          uuid.NewString,
		OnExport:       col.ObserveExport,
	}

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}))
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("feed-service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Carga inicial: snapshot (dados da última execução) e depois a busca real
	g.Go(func() error {
		if ok, err := ctl.Restore(gctx); err != nil {
			log.Warn("snapshot restore failed", zap.Error(err))
		} else if ok {
			log.Info("serving stale snapshot until first fetch")
		}
		if _, err := ctl.Reload(gctx); err != nil && !errors.Is(err, controller.ErrSuperseded) {
			log.Warn("initial load failed", zap.Error(err))
		}
		if cfg.PollInterval <= 0 {
			return nil
		}
		log.Info("polling backend", zap.Duration("interval", cfg.PollInterval))
		if err := ctl.Poll(gctx, cfg.PollInterval); err != nil && gctx.Err() == nil {
			return fmt.Errorf("poll: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		err := srv.Shutdown(shutdownCtx)
		stop() // encerra o subscriber também quando a parada vem de um erro
		<-subDone
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("feed-service stopped with error", zap.Error(err))
		return
	}
	log.Info("feed-service stopped")
}

// allowOrigin aplica a mesma lista de origens do CORS ao upgrade do WebSocket.
// Requisições sem Origin (clientes fora do navegador) são aceitas.
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, "*") || slices.Contains(origins, o)
	}
}
