package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Opportunity é a linha devolvida em /opportunities.
type Opportunity struct {
	Match           string  `json:"match"`
	Competition     string  `json:"competition"`
	Market          string  `json:"market"`
	Bookmaker       string  `json:"bookmaker"`
	Sport           string  `json:"sport"`
	Odds            float64 `json:"odds"`
	EV              float64 `json:"ev"`
	Probability     float64 `json:"probability"`
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potential_return"`
	Date            string  `json:"date"`
}

// Multiple é uma combinação de 2 ou 3 oportunidades.
type Multiple struct {
	Description         string  `json:"description,omitempty"`
	Legs                []any   `json:"legs"`
	NLegs               int     `json:"n_legs"`
	CombinedOdds        float64 `json:"combined_odds"`
	CombinedProbability float64 `json:"combined_probability"`
	CombinedEV          float64 `json:"combined_ev"`
}

// OpportunitiesResult é o corpo de /opportunities. Opportunities é []any
// porque linhas malformadas são misturadas de propósito.
type OpportunitiesResult struct {
	Opportunities []any      `json:"opportunities"`
	Multiples     []Multiple `json:"multiples"`
	Count         int        `json:"count"`
}

// Bet é um registro do histórico.
type Bet struct {
	BetID     string   `json:"bet_id"`
	Match     string   `json:"match"`
	Market    string   `json:"market"`
	Odds      float64  `json:"odds"`
	Stake     float64  `json:"stake"`
	Status    string   `json:"status"` // pending | won | lost | void
	Phase     int      `json:"phase"`
	Timestamp string   `json:"timestamp"`
	Result    *float64 `json:"result"`
}

type Statistics struct {
	TotalBets   int     `json:"total_bets"`
	Won         int     `json:"won"`
	Lost        int     `json:"lost"`
	Void        int     `json:"void"`
	WinRate     float64 `json:"win_rate"`
	TotalStaked float64 `json:"total_staked"`
	TotalProfit float64 `json:"total_profit"`
	ROI         float64 `json:"roi"`
	AvgOdds     float64 `json:"avg_odds"`
	AvgStake    float64 `json:"avg_stake"`
}

// PhaseInfo é o corpo de /phase. Phase é número ou "Consolidação".
type PhaseInfo struct {
	Phase       any      `json:"phase"`
	Bankroll    float64  `json:"bankroll"`
	Target      *float64 `json:"target"`
	Progress    float64  `json:"progress"`
	Remaining   float64  `json:"remaining"`
	MinEV       float64  `json:"min_ev"`
	MaxStakePct float64  `json:"max_stake_pct"`
}

// Simulator gera oportunidades a partir do catálogo e guarda o histórico em memória.
type Simulator struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	bets []Bet

	Bankroll      float64 // banca usada em /phase e /statistics
	MalformedRate float64 // chance de acrescentar uma linha malformada por chamada
	Now           func() time.Time
}

// New cria o simulador. O seed fixo torna as respostas reprodutíveis em testes.
func New(seed int64) *Simulator {
	return &Simulator{
		rnd:           rand.New(rand.NewSource(seed)),
		Bankroll:      100,
		MalformedRate: 0.2,
		Now:           time.Now,
	}
}

// Opportunities precifica o catálogo e devolve as seleções com EV positivo,
// com stake por Kelly fracionado limitado ao teto da fase.
func (s *Simulator) Opportunities(bankroll float64) OpportunitiesResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule := PhaseFor(bankroll)
	date := s.Now().Format("2006-01-02")

	var opps []Opportunity
	for _, t := range Catalog {
		odds := round2((1 / t.Probability) * (0.96 + s.rnd.Float64()*0.18))
		edge := t.Probability*odds - 1
		if edge <= 0 || odds <= 1 {
			continue
		}
		stakePct := math.Min(edge/(odds-1)*rule.Kelly*100, rule.MaxStakePct)
		stake := round2(stakePct / 100 * bankroll)
		opps = append(opps, Opportunity{
			Match:           t.Match,
			Competition:     t.Competition,
			Market:          t.Market,
			Bookmaker:       t.Bookmaker,
			Sport:           t.Sport,
			Odds:            odds,
			EV:              round2(edge * 100),
			Probability:     t.Probability,
			Stake:           stake,
			PotentialReturn: round2(stake * odds),
			Date:            date,
		})
	}
	sort.SliceStable(opps, func(i, j int) bool { return opps[i].EV > opps[j].EV })

	out := OpportunitiesResult{
		Opportunities: make([]any, 0, len(opps)+1),
		Multiples:     detectMultiples(opps),
		Count:         len(opps),
	}
	for _, o := range opps {
		out.Opportunities = append(out.Opportunities, o)
	}
	if s.rnd.Float64() < s.MalformedRate {
		out.Opportunities = append(out.Opportunities, malformed[s.rnd.Intn(len(malformed))])
	}
	return out
}

// malformed são linhas que o consumidor precisa tolerar.
var malformed = []any{
	map[string]any{"match": "Botafogo vs Fluminense", "odds": "n/a", "ev": nil, "sport": nil},
	map[string]any{"competition": "Libertadores", "stake": "10,00", "probability": 1.7},
	"linha inválida",
	map[string]any{"match": 42, "market": []string{"1X2"}, "potential_return": -3},
}

// detectMultiples combina pares de competições diferentes com probabilidade
// combinada >= 30% e EV positivo. As pernas alternam entre texto e objeto.
func detectMultiples(opps []Opportunity) []Multiple {
	var out []Multiple
	for i := 0; i < len(opps) && len(out) < 3; i++ {
		for j := i + 1; j < len(opps) && len(out) < 3; j++ {
			a, b := opps[i], opps[j]
			if a.Match == b.Match || a.Competition == b.Competition {
				continue
			}
			prob := a.Probability * b.Probability
			odds := round2(a.Odds * b.Odds)
			ev := (prob*odds - 1) * 100
			if prob < 0.30 || ev <= 0 {
				continue
			}
			m := Multiple{
				Legs: []any{
					a.Match + " - " + a.Market,
					map[string]any{"selection": b.Market, "match": b.Match, "odds": b.Odds},
				},
				NLegs:               2,
				CombinedOdds:        odds,
				CombinedProbability: math.Round(prob*10000) / 10000,
				CombinedEV:          round2(ev),
			}
			if len(out)%2 == 0 {
				m.Description = fmt.Sprintf("Dupla %s + %s", a.Competition, b.Competition)
			}
			out = append(out, m)
		}
	}
	if out == nil {
		out = []Multiple{}
	}
	return out
}

// RegisterBet grava uma aposta pendente e devolve o id.
func (s *Simulator) RegisterBet(match, market string, odds, stake float64, phase int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "BET-" + strings.ToUpper(uuid.NewString()[:8])
	s.bets = append(s.bets, Bet{
		BetID:     id,
		Match:     match,
		Market:    market,
		Odds:      odds,
		Stake:     stake,
		Status:    "pending",
		Phase:     phase,
		Timestamp: s.Now().UTC().Format(time.RFC3339),
	})
	return id
}

// Settle liquida uma aposta pendente. profit é o resultado líquido.
func (s *Simulator) Settle(betID, status string, profit float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bets {
		if s.bets[i].BetID == betID && s.bets[i].Status == "pending" {
			s.bets[i].Status = status
			s.bets[i].Result = &profit
			return true
		}
	}
	return false
}

// History devolve as apostas mais recentes primeiro. limit <= 0 usa 10.
func (s *Simulator) History(limit int) []Bet {
	if limit <= 0 {
		limit = 10
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Bet, 0, min(limit, len(s.bets)))
	for i := len(s.bets) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.bets[i])
	}
	return out
}

// Statistics considera apenas apostas liquidadas.
func (s *Simulator) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Statistics
	var sumOdds float64
	for _, b := range s.bets {
		if b.Status == "pending" {
			continue
		}
		st.TotalBets++
		switch b.Status {
		case "won":
			st.Won++
		case "lost":
			st.Lost++
		case "void":
			st.Void++
		}
		st.TotalStaked += b.Stake
		if b.Result != nil {
			st.TotalProfit += *b.Result
		}
		sumOdds += b.Odds
	}
	if st.TotalBets == 0 {
		return st
	}
	st.WinRate = round2(float64(st.Won) / float64(st.TotalBets) * 100)
	st.AvgOdds = round2(sumOdds / float64(st.TotalBets))
	st.AvgStake = round2(st.TotalStaked / float64(st.TotalBets))
	if st.TotalStaked > 0 {
		st.ROI = round2(st.TotalProfit / st.TotalStaked * 100)
	}
	st.TotalStaked = round2(st.TotalStaked)
	st.TotalProfit = round2(st.TotalProfit)
	return st
}

// Phase descreve a fase atual da banca do simulador.
func (s *Simulator) Phase() PhaseInfo {
	s.mu.Lock()
	bankroll := s.Bankroll
	s.mu.Unlock()

	rule := PhaseFor(bankroll)
	info := PhaseInfo{Bankroll: bankroll, MinEV: rule.MinEV, MaxStakePct: rule.MaxStakePct}
	if rule.Target == 0 {
		info.Phase = "Consolidação"
		info.Progress = 100
		return info
	}
	target := rule.Target
	info.Phase = rule.Phase
	info.Target = &target
	info.Progress = round2(bankroll / target * 100)
	info.Remaining = round2(target - bankroll)
	return info
}

var chatKeywords = []string{"oportunidade", "aposta", "jogo", "value", "hoje", "dica"}

// Chat responde com um resumo das oportunidades quando a pergunta é sobre
// apostas; caso contrário devolve uma resposta genérica.
func (s *Simulator) Chat(message string) string {
	s.mu.Lock()
	bankroll := s.Bankroll
	s.mu.Unlock()

	m := strings.ToLower(message)
	for _, k := range chatKeywords {
		if strings.Contains(m, k) {
			res := s.Opportunities(bankroll)
			if res.Count == 0 {
				return "Não encontrei oportunidades com valor no momento."
			}
			best, _ := res.Opportunities[0].(Opportunity)
			return fmt.Sprintf("Encontrei %d oportunidades. A melhor é %s (%s) com EV de %.1f%% na odd %.2f.",
				res.Count, best.Match, best.Market, best.EV, best.Odds)
		}
	}
	return "Posso ajudar com as oportunidades do dia, o histórico e a fase da banca."
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
