package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/backend-simulator/simulator"
	"github.com/radieske/value-bet-feed/internal/shared/config"
	"github.com/radieske/value-bet-feed/internal/shared/logger"
	"github.com/radieske/value-bet-feed/internal/shared/metrics"
)

// Métricas Prometheus das rotas simuladas
var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "backend_sim_requests_total",
	Help: "Requisições atendidas pelo simulador por rota e status",
}, []string{"route", "status"})

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "backend-simulator"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(requestsTotal)

	sim := simulator.New(time.Now().UnixNano())
	sim.Bankroll = cfg.Bankroll

	srv := &simulator.Server{
		Log:            log,
		Sim:            sim,
		AllowedOrigins: cfg.AllowedOrigins,
		FailRate:       0.05,
		OnRequest: func(route string, status int) {
			requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		},
	}

	// Servidor de métricas em goroutine
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil)
	log.Info("backend simulator (metrics) running",
		zap.String("addr", metricsSrv.Addr),
		zap.String("paths", "/healthz,/metrics"),
	)

	// Servidor público (contrato do backend de análise)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("backend simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/opportunities,/statistics,/history,/phase,/chat,/register-bet"),
	)
	if err := http.ListenAndServe(publicAddr, srv.Router()); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
