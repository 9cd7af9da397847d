package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatExportLine gera a linha compartilhável de uma oportunidade, sempre
// na mesma ordem: jogo, competição, mercado, odd, EV, probabilidade e stake.
func FormatExportLine(o Opportunity) string {
	return strings.Join([]string{
		"Jogo: " + orDash(o.Match),
		"Competição: " + orDash(o.Competition),
		"Mercado: " + orDash(o.Market),
		"Odd: " + FormatOdds(o.Odds),
		"EV: " + FormatEV(o.EV),
		"Prob: " + FormatPercent(o.Probability),
		"Stake: " + FormatMoney(o.Stake),
	}, " | ")
}

// FormatOdds formata a odd decimal com 2 casas.
func FormatOdds(v float64) string {
	return fmt.Sprintf("%.2f", Finite(v))
}

// FormatEV formata o EV (já em pontos percentuais) com sinal explícito.
func FormatEV(ev float64) string {
	ev = Finite(ev)
	if ev == 0 {
		ev = 0 // evita "-0.0%"
	}
	return fmt.Sprintf("%+.1f%%", ev)
}

// FormatPercent formata uma probabilidade [0,1] como percentual com 1 casa.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", Finite(p)*100)
}

// FormatMoney formata um valor em reais no padrão pt-BR (R$ 1.234,50).
func FormatMoney(v float64) string {
	v = Finite(v)
	if v < 0 {
		return "-R$ " + brl.Sprintf("%.2f", -v)
	}
	return "R$ " + brl.Sprintf("%.2f", v)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// ImpliedProbability retorna 1/odds; ok=false quando odds <= 0.
func ImpliedProbability(odds float64) (p float64, ok bool) {
	if odds <= 0 {
		return 0, false
	}
	return 1 / odds, true
}

// Edge retorna probabilidade do modelo menos a implícita; ok=false quando odds <= 0.
func Edge(probability, odds float64) (e float64, ok bool) {
	implied, ok := ImpliedProbability(odds)
	if !ok {
		return 0, false
	}
	return probability - implied, true
}

// Detail traz os campos derivados exibidos ao expandir uma oportunidade.
// ImpliedProbability e Edge são frações (0.5 = 50%) e ficam nil quando odds <= 0.
type Detail struct {
	Key                string   `json:"key"`
	Line               string   `json:"line"`
	Odds               float64  `json:"odds"`
	EV                 float64  `json:"ev"`
	Probability        float64  `json:"probability"`
	Stake              float64  `json:"stake"`
	PotentialReturn    float64  `json:"potential_return"`
	ImpliedProbability *float64 `json:"implied_probability"`
	Edge               *float64 `json:"edge"`
}

// DetailOf calcula o detalhe de uma oportunidade.
func DetailOf(o Opportunity) Detail {
	d := Detail{
		Key:             o.Ident(),
		Line:            FormatExportLine(o),
		Odds:            o.Odds,
		EV:              o.EV,
		Probability:     o.Probability,
		Stake:           o.Stake,
		PotentialReturn: o.PotentialReturn,
	}
	if p, ok := ImpliedProbability(o.Odds); ok {
		d.ImpliedProbability = &p
	}
	if e, ok := Edge(o.Probability, o.Odds); ok {
		d.Edge = &e
	}
	return d
}

// ImpliedText e EdgeText devolvem o valor formatado em percentual ou "-".
func (d Detail) ImpliedText() string { return optPercent(d.ImpliedProbability) }

func (d Detail) EdgeText() string { return optPercent(d.Edge) }

func optPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return FormatPercent(*v)
}
