package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/export-journal/consumer"
	"github.com/radieske/value-bet-feed/internal/export-journal/repository"
	"github.com/radieske/value-bet-feed/internal/shared/config"
	"github.com/radieske/value-bet-feed/internal/shared/db"
	"github.com/radieske/value-bet-feed/internal/shared/kafka"
	"github.com/radieske/value-bet-feed/internal/shared/logger"
	"github.com/radieske/value-bet-feed/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "export-journal-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	// Consumer group próprio: cada exportação é gravada uma vez
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetExported, "export-journal")
	defer reader.Close()

	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetExportedDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "export_journal_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "export_journal_db_writes_total", Help: "exportações gravadas no diário"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "export_journal_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Journal:    repo,
		DLQ:        dlq,
		Retries:    3,
		Backoff:    200 * time.Millisecond,
		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health listening", zap.String("addr", fmt.Sprintf(":%s", cfg.MetricsPort)))
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = metricsSrv.Shutdown(sctx)
	}()

	log.Info("export-journal-worker started",
		zap.String("topic", cfg.TopicBetExported),
		zap.String("dlq", cfg.TopicBetExportedDLQ),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
		return
	}
	log.Info("export-journal-worker stopped")
}
