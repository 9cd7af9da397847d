package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/shared/config"
	"github.com/radieske/value-bet-feed/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

// newRouter: /api/feed/* vai para o feed-service, o resto de /api/* para o backend
func newRouter(feedURL, backendURL string, origins []string) http.Handler {
	feedSvc := rp(feedURL)
	backend := rp(backendURL)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// feed (ex.: /api/feed/v1/feed -> feed-service /v1/feed; /api/feed/ws -> WebSocket)
	r.Handle("/api/feed/*", http.StripPrefix("/api/feed", feedSvc))

	// backend de análise (ex.: /api/statistics -> backend /statistics)
	r.Handle("/api/*", http.StripPrefix("/api", backend))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "api-gateway"
	}
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening",
		zap.String("addr", addr),
		zap.String("feed", cfg.FeedServiceURL),
		zap.String("backend", cfg.BackendURL),
	)
	if err := http.ListenAndServe(addr, newRouter(cfg.FeedServiceURL, cfg.BackendURL, cfg.AllowedOrigins)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}
