package feed

import "strings"

// Bucket é a categoria fixa de esporte usada pelos filtros do feed.
type Bucket string

const (
	BucketFootball Bucket = "football"
	BucketNFL      Bucket = "nfl"
	BucketTennis   Bucket = "tennis"
	BucketOther    Bucket = "other"
)

// DefaultSport é assumido quando o backend não informa o esporte.
const DefaultSport = "Football"

// Classify normaliza o rótulo livre de esporte para um Bucket.
// Só a ausência (nil ou "") vira futebol; um rótulo só com espaços cai em Other.
func Classify(sport *string) Bucket {
	if sport == nil || *sport == "" {
		return BucketFootball
	}
	switch strings.ToLower(strings.TrimSpace(*sport)) {
	case "football", "soccer":
		return BucketFootball
	case "nfl":
		return BucketNFL
	case "tennis":
		return BucketTennis
	default:
		return BucketOther
	}
}

// SportFilter é a aba de esporte selecionada pelo usuário.
type SportFilter string

const (
	SportAll      SportFilter = "all"
	SportFootball SportFilter = "football"
	SportNFL      SportFilter = "nfl"
	SportTennis   SportFilter = "tennis"
)

// ParseSportFilter converte o valor recebido (query string, flag) em SportFilter.
// Valores desconhecidos caem em SportAll.
func ParseSportFilter(s string) SportFilter {
	switch f := SportFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case SportFootball, SportNFL, SportTennis:
		return f
	default:
		return SportAll
	}
}

// bucket retorna o Bucket correspondente e false para SportAll.
func (f SportFilter) bucket() (Bucket, bool) {
	switch f {
	case SportFootball:
		return BucketFootball, true
	case SportNFL:
		return BucketNFL, true
	case SportTennis:
		return BucketTennis, true
	default:
		return "", false
	}
}

// SportCounts conta as oportunidades por aba, sobre a lista sem filtros.
type SportCounts struct {
	All      int `json:"all"`
	Football int `json:"football"`
	NFL      int `json:"nfl"`
	Tennis   int `json:"tennis"`
}

// CountBySport calcula os contadores exibidos nas abas de esporte.
func CountBySport(items []Opportunity) SportCounts {
	c := SportCounts{All: len(items)}
	for _, o := range items {
		switch o.Bucket() {
		case BucketFootball:
			c.Football++
		case BucketNFL:
			c.NFL++
		case BucketTennis:
			c.Tennis++
		}
	}
	return c
}
