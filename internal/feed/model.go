package feed

import (
	"strconv"
	"strings"
	"time"
)

// Opportunity representa uma aposta simples +EV já saneada.
// Todos os campos numéricos são finitos (valores ausentes ou inválidos viram 0).
type Opportunity struct {
	Match           string  `json:"match"`
	Competition     string  `json:"competition"`
	Market          string  `json:"market"`
	Bookmaker       string  `json:"bookmaker"`
	Sport           string  `json:"sport"`
	Odds            float64 `json:"odds"`
	EV              float64 `json:"ev"`          // em pontos percentuais (4.2 = +4.2%)
	Probability     float64 `json:"probability"` // intervalo [0,1]
	Stake           float64 `json:"stake"`
	PotentialReturn float64 `json:"potential_return"`
	// ID distingue itens com a mesma Key; atribuído pelo store a cada carga.
	ID string `json:"id,omitempty"`
}

// Key identifica a oportunidade de forma estável entre filtros e ordenações.
func (o Opportunity) Key() string {
	return strings.ToLower(o.Match + "|" + o.Market + "|" + o.Bookmaker)
}

// Ident é a identidade usada para expansão e exportação: o ID quando
// atribuído, senão a Key.
func (o Opportunity) Ident() string {
	if o.ID != "" {
		return o.ID
	}
	return o.Key()
}

// WithIDs devolve uma cópia da lista com IDs únicos. A primeira ocorrência de
// uma Key recebe a própria Key; as repetições recebem "#2", "#3", na ordem de
// chegada. A ordem de chegada não depende de filtro nem de ordenação.
func WithIDs(items []Opportunity) []Opportunity {
	if items == nil {
		return nil
	}
	out := make([]Opportunity, len(items))
	seen := make(map[string]int, len(items))
	for i, o := range items {
		k := o.Key()
		seen[k]++
		o.ID = k
		if n := seen[k]; n > 1 {
			o.ID = k + "#" + strconv.Itoa(n)
		}
		out[i] = o
	}
	return out
}

// Bucket retorna a categoria de esporte da oportunidade.
func (o Opportunity) Bucket() Bucket {
	return Classify(&o.Sport)
}

// Multiple representa uma aposta múltipla (combinada).
type Multiple struct {
	Description  string  `json:"description"`
	CombinedOdds float64 `json:"combined_odds"`
	Legs         []Leg   `json:"legs"`
}

// Leg é uma perna da múltipla. Pode vir do backend como texto simples
// (Text) ou como registro estruturado (Selection/Market/Match).
type Leg struct {
	Text      string  `json:"text,omitempty"`
	Selection string  `json:"selection,omitempty"`
	Market    string  `json:"market,omitempty"`
	Match     string  `json:"match,omitempty"`
	Odds      float64 `json:"odds,omitempty"`
}

// Label resolve o rótulo de exibição da perna na posição i (base 0).
// Prioridade: texto simples, selection, market, match e por fim "Perna N".
func (l Leg) Label(i int) string {
	for _, s := range []string{l.Text, l.Selection, l.Market, l.Match} {
		if s != "" {
			return s
		}
	}
	return "Perna " + strconv.Itoa(i+1)
}

// Snapshot é a última carga bem-sucedida do feed, usada como dado "stale"
// ao reiniciar o serviço.
type Snapshot struct {
	Opportunities []Opportunity `json:"opportunities"`
	Multiples     []Multiple    `json:"multiples"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
