package simulator

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed-service/backend/dto"
)

// Server expõe o simulador com o mesmo contrato HTTP do backend de análise.
type Server struct {
	Log            *zap.Logger
	Sim            *Simulator
	AllowedOrigins []string

	// FailRate é a chance de /opportunities responder 500 (exercita o caminho de erro do feed).
	FailRate float64
	Rand     func() float64

	OnRequest func(route string, status int) // métricas
}

// Router monta as rotas públicas
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, "/", http.StatusOK, map[string]string{"status": "online", "message": "Value Betting API"})
	})
	r.Post("/opportunities", s.opportunities)
	r.Get("/statistics", s.statistics)
	r.Get("/history", s.history)
	r.Get("/phase", s.phase)
	r.Post("/chat", s.chat)
	r.Post("/register-bet", s.registerBet)
	return r
}

func (s *Server) opportunities(w http.ResponseWriter, r *http.Request) {
	var req dto.OpportunitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Bankroll <= 0 {
		s.writeError(w, "/opportunities", http.StatusUnprocessableEntity, "bankroll inválido")
		return
	}
	if s.roll() < s.FailRate {
		s.Log.Warn("injected opportunities failure")
		s.writeError(w, "/opportunities", http.StatusInternalServerError, "falha simulada")
		return
	}
	s.writeJSON(w, "/opportunities", http.StatusOK, s.Sim.Opportunities(req.Bankroll))
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "/statistics", http.StatusOK, s.Sim.Statistics())
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.writeJSON(w, "/history", http.StatusOK, s.Sim.History(limit))
}

func (s *Server) phase(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "/phase", http.StatusOK, s.Sim.Phase())
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, "/chat", http.StatusUnprocessableEntity, "mensagem vazia")
		return
	}
	s.writeJSON(w, "/chat", http.StatusOK, map[string]string{"message": s.Sim.Chat(req.Message)})
}

func (s *Server) registerBet(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Match == "" || req.Odds <= 1 || req.Stake <= 0 {
		s.writeError(w, "/register-bet", http.StatusUnprocessableEntity, "aposta inválida")
		return
	}
	id := s.Sim.RegisterBet(req.Match, req.Market, req.Odds, req.Stake, req.Phase)
	s.Log.Info("bet registered", zap.String("bet_id", id), zap.String("match", req.Match))
	s.writeJSON(w, "/register-bet", http.StatusOK, map[string]string{"bet_id": id, "message": "Aposta registrada com sucesso"})
}

func (s *Server) roll() float64 {
	if s.Rand != nil {
		return s.Rand()
	}
	return rand.Float64()
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
	if s.OnRequest != nil {
		s.OnRequest(route, status)
	}
}

func (s *Server) writeError(w http.ResponseWriter, route string, status int, detail string) {
	s.writeJSON(w, route, status, map[string]string{"detail": detail})
}
