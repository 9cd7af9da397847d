package feed

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey é o critério de ordenação selecionado pelo usuário.
type SortKey string

const (
	SortEVDesc          SortKey = "ev_desc"
	SortOddsDesc        SortKey = "odds_desc"
	SortStakeAsc        SortKey = "stake_asc"
	SortProbabilityDesc SortKey = "prob_desc"
)

// ParseSortKey converte o valor recebido em SortKey; desconhecido vira SortEVDesc.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortOddsDesc, SortStakeAsc, SortProbabilityDesc:
		return k
	default:
		return SortEVDesc
	}
}

// Sort devolve uma nova lista ordenada pela chave. A ordenação é estável:
// itens empatados mantêm a ordem relativa de entrada.
func Sort(items []Opportunity, key SortKey) []Opportunity {
	out := slices.Clone(items)
	if out == nil {
		out = []Opportunity{}
	}
	slices.SortStableFunc(out, comparator(key))
	return out
}

func comparator(key SortKey) func(a, b Opportunity) int {
	switch key {
	case SortOddsDesc:
		return func(a, b Opportunity) int { return cmp.Compare(b.Odds, a.Odds) }
	case SortStakeAsc:
		return func(a, b Opportunity) int { return cmp.Compare(a.Stake, b.Stake) }
	case SortProbabilityDesc:
		return func(a, b Opportunity) int { return cmp.Compare(b.Probability, a.Probability) }
	default:
		return func(a, b Opportunity) int { return cmp.Compare(b.EV, a.EV) }
	}
}
