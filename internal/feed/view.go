package feed

import (
	"strconv"
	"time"
)

// Lifecycle é o estado do ciclo de busca do feed.
type Lifecycle string

const (
	Idle       Lifecycle = "idle"
	Loading    Lifecycle = "loading"
	Refreshing Lifecycle = "refreshing"
	Ready      Lifecycle = "ready"
	Error      Lifecycle = "error"
)

// FeedState é o estado controlado exclusivamente pelo controller de busca.
// As listas são tratadas como imutáveis: cada carga substitui a lista inteira.
type FeedState struct {
	Opportunities []Opportunity `json:"opportunities"`
	Multiples     []Multiple    `json:"multiples"`
	Lifecycle     Lifecycle     `json:"lifecycle"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
	Generation    uint64        `json:"generation"`
}

// Loaded indica se já houve ao menos uma carga com sucesso (ou snapshot restaurado).
func (s FeedState) Loaded() bool { return !s.LastUpdatedAt.IsZero() }

// ViewState é o estado efêmero derivado das ações do usuário.
type ViewState struct {
	Sport  SportFilter `json:"sport"`
	Search string      `json:"search"`
	Sort   SortKey     `json:"sort"`
	// Expanded guarda a identidade (Ident) do item expandido (vazio = nenhum), e não a
	// posição, para sobreviver a mudanças de filtro e ordenação.
	Expanded string  `json:"expanded,omitempty"`
	Notice   *Notice `json:"notice,omitempty"`
}

// DefaultView é a visão inicial: todos os esportes, sem busca, EV decrescente.
func DefaultView() ViewState {
	return ViewState{Sport: SportAll, Sort: SortEVDesc}
}

// NoticeKind diferencia as notificações transitórias.
type NoticeKind string

const (
	NoticeCopied      NoticeKind = "copied"
	NoticeCopyBlocked NoticeKind = "copy_blocked"
)

// Notice é uma notificação transitória (snackbar).
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Active indica se a notificação ainda deve ser exibida em now.
func (n *Notice) Active(now time.Time) bool {
	return n != nil && (n.ExpiresAt.IsZero() || now.Before(n.ExpiresAt))
}

// Visible aplica filtro e ordenação: é a lista exibida para a visão dada.
func Visible(items []Opportunity, v ViewState) []Opportunity {
	return Sort(Filter(items, v.Sport, v.Search), v.Sort)
}

// MultipleView é a linha exibida de uma múltipla.
type MultipleView struct {
	Description  string   `json:"description"`
	CombinedOdds string   `json:"combined_odds"`
	Legs         []string `json:"legs"`
}

// ViewMultiple resolve descrição, odd combinada e rótulos das pernas.
func ViewMultiple(m Multiple) MultipleView {
	mv := MultipleView{
		Description:  m.Description,
		CombinedOdds: "-",
		Legs:         make([]string, 0, len(m.Legs)),
	}
	if mv.Description == "" {
		mv.Description = strconv.Itoa(len(m.Legs)) + " pernas combinadas"
	}
	if m.CombinedOdds != 0 {
		mv.CombinedOdds = FormatOdds(m.CombinedOdds)
	}
	for i, l := range m.Legs {
		mv.Legs = append(mv.Legs, l.Label(i))
	}
	return mv
}

// RenderModel é tudo que a camada de apresentação precisa para desenhar o feed.
type RenderModel struct {
	Lifecycle     Lifecycle      `json:"lifecycle"`
	Loaded        bool           `json:"loaded"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	LastUpdatedAt *time.Time     `json:"last_updated_at,omitempty"`
	View          ViewState      `json:"view"`
	Counts        SportCounts    `json:"counts"`
	Singles       int            `json:"singles"`
	MultipleCount int            `json:"multiple_count"`
	Items         []Opportunity  `json:"items"`
	Summary       Summary        `json:"summary"`
	ExpandedIndex *int           `json:"expanded_index,omitempty"`
	Expanded      *Detail        `json:"expanded,omitempty"`
	Multiples     []MultipleView `json:"multiples"`
	Notice        *Notice        `json:"notice,omitempty"`
}

// BuildView deriva o modelo de renderização a partir dos dois estados.
// Função pura: pode ser reexecutada a cada mudança sem invalidação explícita.
func BuildView(fs FeedState, vs ViewState, now time.Time) RenderModel {
	items := Visible(fs.Opportunities, vs)
	rm := RenderModel{
		Lifecycle:     fs.Lifecycle,
		Loaded:        fs.Loaded(),
		ErrorMessage:  fs.ErrorMessage,
		View:          vs,
		Counts:        CountBySport(fs.Opportunities),
		Singles:       len(fs.Opportunities),
		MultipleCount: len(fs.Multiples),
		Items:         items,
		Summary:       Aggregate(items),
		Multiples:     make([]MultipleView, 0, len(fs.Multiples)),
	}
	rm.View.Notice = nil
	if fs.Loaded() {
		t := fs.LastUpdatedAt
		rm.LastUpdatedAt = &t
	}
	if i := IndexOf(items, vs.Expanded); i >= 0 {
		idx := i
		d := DetailOf(items[i])
		rm.ExpandedIndex = &idx
		rm.Expanded = &d
	}
	for _, m := range fs.Multiples {
		rm.Multiples = append(rm.Multiples, ViewMultiple(m))
	}
	if vs.Notice.Active(now) {
		n := *vs.Notice
		rm.Notice = &n
	}
	return rm
}

// IndexOf devolve a posição do item com a identidade dada (ver Ident) ou -1.
func IndexOf(items []Opportunity, key string) int {
	if key == "" {
		return -1
	}
	for i, o := range items {
		if o.Ident() == key {
			return i
		}
	}
	return -1
}
