package feed

import (
	"encoding/json"
	"math"
)

// Saneamento centralizado do payload do backend. Tudo que chega da rede é
// tratado como entrada não confiável: campos ausentes, nulos ou de tipo
// errado viram valores neutros e nenhum item é descartado.

// SanitizeOpportunities converte o campo "opportunities" bruto em oportunidades.
// Se o campo não for uma lista, retorna lista vazia (nunca nil).
func SanitizeOpportunities(raw json.RawMessage) []Opportunity {
	items := rawList(raw)
	out := make([]Opportunity, 0, len(items))
	for _, it := range items {
		out = append(out, SanitizeOpportunity(it))
	}
	return out
}

// SanitizeOpportunity converte um único item. Itens que não são objeto viram
// uma oportunidade zerada de futebol.
func SanitizeOpportunity(raw json.RawMessage) Opportunity {
	f := rawObject(raw)
	sport := text(f, "sport")
	if sport == "" {
		sport = DefaultSport
	}
	return Opportunity{
		Match:           text(f, "match"),
		Competition:     text(f, "competition"),
		Market:          text(f, "market"),
		Bookmaker:       text(f, "bookmaker"),
		Sport:           sport,
		Odds:            number(f, "odds"),
		EV:              number(f, "ev"),
		Probability:     number(f, "probability"),
		Stake:           number(f, "stake"),
		PotentialReturn: number(f, "potential_return"),
	}
}

// SanitizeMultiples converte o campo "multiples" bruto.
func SanitizeMultiples(raw json.RawMessage) []Multiple {
	items := rawList(raw)
	out := make([]Multiple, 0, len(items))
	for _, it := range items {
		f := rawObject(it)
		m := Multiple{
			Description:  text(f, "description"),
			CombinedOdds: number(f, "combined_odds"),
		}
		legs := rawList(f["legs"])
		m.Legs = make([]Leg, 0, len(legs))
		for _, l := range legs {
			m.Legs = append(m.Legs, sanitizeLeg(l))
		}
		out = append(out, m)
	}
	return out
}

func sanitizeLeg(raw json.RawMessage) Leg {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Leg{Text: s}
	}
	f := rawObject(raw)
	return Leg{
		Selection: text(f, "selection"),
		Market:    text(f, "market"),
		Match:     text(f, "match"),
		Odds:      number(f, "odds"),
	}
}

func rawList(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

func rawObject(raw json.RawMessage) map[string]json.RawMessage {
	var f map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return nil
	}
	return f
}

func text(f map[string]json.RawMessage, key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func number(f map[string]json.RawMessage, key string) float64 {
	v, ok := f[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		return 0
	}
	return Finite(n)
}

// Finite devolve 0 para NaN e ±Inf.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
