package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// Options controla as seções opcionais da saída.
type Options struct {
	Multiples bool
	Location  *time.Location // fuso do "Atualizado às"; nil = local
}

type tab struct {
	filter feed.SportFilter
	label  string
	count  func(feed.SportCounts) int
}

var tabs = []tab{
	{feed.SportAll, "Todos", func(c feed.SportCounts) int { return c.All }},
	{feed.SportFootball, "Futebol", func(c feed.SportCounts) int { return c.Football }},
	{feed.SportNFL, "NFL", func(c feed.SportCounts) int { return c.NFL }},
	{feed.SportTennis, "Tênis", func(c feed.SportCounts) int { return c.Tennis }},
}

// Write desenha o modelo de renderização no terminal.
func Write(w io.Writer, rm feed.RenderModel, opts Options) error {
	p := &printer{w: w}

	switch {
	case rm.Lifecycle == feed.Error:
		p.line("⚠ " + rm.ErrorMessage)
		if !rm.Loaded {
			return p.err
		}
		p.line("Exibindo os últimos dados carregados.")
	case rm.Lifecycle == feed.Loading, rm.Lifecycle == feed.Idle:
		p.line("Carregando oportunidades...")
		return p.err
	case rm.Lifecycle == feed.Refreshing:
		p.line("Atualizando...")
	}

	updated := "-"
	if rm.LastUpdatedAt != nil {
		loc := opts.Location
		if loc == nil {
			loc = time.Local
		}
		updated = rm.LastUpdatedAt.In(loc).Format("15:04:05")
	}
	p.line(fmt.Sprintf("Atualizado às %s | Simples: %d | Múltiplas: %d", updated, rm.Singles, rm.MultipleCount))

	labels := make([]string, 0, len(tabs))
	for _, t := range tabs {
		l := fmt.Sprintf("%s (%d)", t.label, t.count(rm.Counts))
		if t.filter == rm.View.Sport {
			l = "[" + l + "]"
		}
		labels = append(labels, l)
	}
	p.line(strings.Join(labels, "  "))

	s := rm.Summary
	p.line(fmt.Sprintf("Melhor EV: %s | EV médio: %s | Stake total: %s | Retorno total: %s",
		feed.FormatEV(s.BestEV), feed.FormatEV(s.AvgEV), feed.FormatMoney(s.TotalStake), feed.FormatMoney(s.TotalReturn)))
	p.line("")

	if len(rm.Items) == 0 {
		p.line("Nenhuma oportunidade encontrada para os filtros atuais.")
	} else {
		p.table(rm)
	}

	if rm.Expanded != nil {
		d := rm.Expanded
		p.line("")
		p.line(d.Line)
		p.line(fmt.Sprintf("Retorno potencial: %s | Prob. implícita: %s | Edge: %s",
			feed.FormatMoney(d.PotentialReturn), d.ImpliedText(), d.EdgeText()))
	}

	if opts.Multiples && len(rm.Multiples) > 0 {
		p.line("")
		p.line("Múltiplas")
		for _, m := range rm.Multiples {
			p.line(fmt.Sprintf("- %s (odd %s)", m.Description, m.CombinedOdds))
			for _, leg := range m.Legs {
				p.line("    " + leg)
			}
		}
	}

	if rm.Notice != nil {
		p.line("")
		p.line(rm.Notice.Message)
	}
	return p.err
}

// printer guarda o primeiro erro de escrita
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) table(rm feed.RenderModel) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tJOGO\tMERCADO\tCASA\tODD\tEV\tPROB\tSTAKE\t")
	for i, o := range rm.Items {
		mark := " "
		if rm.ExpandedIndex != nil && *rm.ExpandedIndex == i {
			mark = ">"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			mark, strconv.Itoa(i+1), o.Match, o.Market, o.Bookmaker,
			feed.FormatOdds(o.Odds), feed.FormatEV(o.EV), feed.FormatPercent(o.Probability), feed.FormatMoney(o.Stake))
	}
	p.err = tw.Flush()
}
