package feed

import "strings"

// Filter aplica o filtro de esporte e a busca textual (AND).
// Nunca altera items e sempre devolve uma lista não-nil: resultado vazio
// é diferente de "ainda não carregado".
func Filter(items []Opportunity, sport SportFilter, search string) []Opportunity {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]Opportunity, 0, len(items))
	for _, o := range items {
		if matchesSport(o, sport) && matchesSearch(o, q) {
			out = append(out, o)
		}
	}
	return out
}

func matchesSport(o Opportunity, sport SportFilter) bool {
	b, ok := sport.bucket()
	if !ok {
		return true
	}
	return o.Bucket() == b
}

// q já deve estar normalizado (trim + lower).
func matchesSearch(o Opportunity, q string) bool {
	if q == "" {
		return true
	}
	hay := strings.ToLower(o.Match + " " + o.Competition + " " + o.Market)
	return strings.Contains(hay, q)
}
