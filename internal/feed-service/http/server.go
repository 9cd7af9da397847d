package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed-service/dto"
	"github.com/radieske/value-bet-feed/internal/feed-service/store"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

// Reloader dispara uma nova busca (silenciosa quando já há dados)
type Reloader interface {
	Reload(ctx context.Context) (store.State, error)
}

// ExportReader lê o diário de exportações (Postgres)
type ExportReader interface {
	RecentExports(ctx context.Context, limit int) ([]dto.Export, error)
}

// ExportPublisher publica bet_exported (Kafka); o worker grava o diário
type ExportPublisher interface {
	PublishBetExported(ctx context.Context, e events.BetExported) error
}

// API expõe o feed renderizado, o refresh e a exportação de oportunidades
// O estado do feed é compartilhado; a visão (filtro, busca, ordenação) vem de cada requisição
type API struct {
	Log        *zap.Logger
	Store      *store.Store
	Controller Reloader
	Exports    ExportReader    // opcional
	Publisher  ExportPublisher // opcional
	WS         http.HandlerFunc

	AllowedOrigins []string
	Now            func() time.Time
	NewID          func() string
	OnExport       func(outcome string) // métricas
}

// Router retorna o roteador HTTP com os endpoints REST e o WebSocket
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(a.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/v1/feed", a.getFeed)                                    // Feed renderizado para a visão da query
	r.Get("/v1/feed/state", a.getState)                             // Ciclo de vida da busca
	r.Post("/v1/feed/refresh", a.refresh)                           // Nova busca (retry)
	r.Get("/v1/feed/opportunities/{index}/export", a.exportByIndex) // Linha + detalhe do i-ésimo item exibido
	r.Post("/v1/feed/export", a.exportByKey)                        // Exporta e registra no diário
	r.Get("/v1/exports", a.listExports)                             // Diário de exportações
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger registra método, rota, status e latência com o zap
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
