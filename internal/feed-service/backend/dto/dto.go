package dto

import (
	"encoding/json"
	"math"
)

// OpportunitiesRequest é o corpo de POST /opportunities.
type OpportunitiesRequest struct {
	Bankroll float64 `json:"bankroll"`
}

// OpportunitiesResponse mantém as listas cruas: o saneamento item a item
// acontece em feed.SanitizeOpportunities / feed.SanitizeMultiples.
type OpportunitiesResponse struct {
	Opportunities json.RawMessage `json:"opportunities"`
	Multiples     json.RawMessage `json:"multiples"`
	Count         Number          `json:"count"`
}

// Statistics é o retorno de GET /statistics.
type Statistics struct {
	TotalBets   Number `json:"total_bets"`
	Won         Number `json:"won"`
	Lost        Number `json:"lost"`
	Void        Number `json:"void"`
	WinRate     Number `json:"win_rate"`
	TotalStaked Number `json:"total_staked"`
	TotalProfit Number `json:"total_profit"`
	ROI         Number `json:"roi"`
	AvgOdds     Number `json:"avg_odds"`
	AvgStake    Number `json:"avg_stake"`
}

// HistoryEntry é um item de GET /history.
type HistoryEntry struct {
	BetID     Text    `json:"bet_id"`
	Match     Text    `json:"match"`
	Market    Text    `json:"market"`
	Odds      Number  `json:"odds"`
	Stake     Number  `json:"stake"`
	Status    Text    `json:"status"`
	Phase     Text    `json:"phase"`
	Timestamp Text    `json:"timestamp"`
	Result    *Number `json:"result"` // nil enquanto a aposta está pendente
}

// Phase é o retorno de GET /phase. Phase pode vir como número (1, 2, 3)
// ou como texto ("Consolidação").
type Phase struct {
	Phase       Text    `json:"phase"`
	Bankroll    Number  `json:"bankroll"`
	Target      *Number `json:"target"`
	Progress    Number  `json:"progress"`
	Remaining   Number  `json:"remaining"`
	MinEV       Number  `json:"min_ev"`
	MaxStakePct Number  `json:"max_stake_pct"`
}

// ChatRequest é o corpo de POST /chat.
type ChatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

type ChatResponse struct {
	Message Text `json:"message"`
}

// RegisterBetRequest é o corpo de POST /register-bet.
type RegisterBetRequest struct {
	Match  string  `json:"match"`
	Market string  `json:"market"`
	Odds   float64 `json:"odds"`
	Stake  float64 `json:"stake"`
	Phase  int     `json:"phase"`
}

type RegisterBetResponse struct {
	BetID   Text `json:"bet_id"`
	Message Text `json:"message"`
}

// Number aceita qualquer valor JSON: números finitos são mantidos,
// o resto (null, texto, bool, objeto, ±Inf) vira 0. Nunca falha.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// Text aceita string ou número (mantido como escrito); o resto vira "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*t = Text(num.String())
		return nil
	}
	*t = ""
	return nil
}

func (t Text) String() string { return string(t) }
