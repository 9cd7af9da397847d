package store

import (
	"time"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// Mode define como uma carga trata os dados já exibidos.
type Mode int

const (
	// ModeInitial limpa as listas e mostra o estado de carregamento.
	ModeInitial Mode = iota
	// ModeSilent mantém as listas visíveis enquanto busca (stale-while-revalidate).
	ModeSilent
)

func (m Mode) String() string {
	if m == ModeSilent {
		return "silent"
	}
	return "initial"
}

// Event é qualquer mudança aceita pelo Reduce.
type Event interface{ isEvent() }

// Eventos do controller de busca
type (
	LoadStarted struct {
		Mode       Mode
		Generation uint64
	}
	LoadSucceeded struct {
		Generation    uint64
		Opportunities []feed.Opportunity
		Multiples     []feed.Multiple
		At            time.Time
	}
	LoadFailed struct {
		Generation uint64
		Message    string
	}
	SnapshotRestored struct {
		Snapshot feed.Snapshot
	}
)

// Eventos do usuário
type (
	SportSelected struct{ Sport feed.SportFilter }
	SearchChanged struct{ Query string }
	SortSelected  struct{ Key feed.SortKey }
	// ExpansionToggled refere-se à posição na lista exibida no momento.
	ExpansionToggled struct{ Index int }
	NoticeShown      struct{ Notice feed.Notice }
	NoticeDismissed  struct{}
)

func (LoadStarted) isEvent()      {}
func (LoadSucceeded) isEvent()    {}
func (LoadFailed) isEvent()       {}
func (SnapshotRestored) isEvent() {}
func (SportSelected) isEvent()    {}
func (SearchChanged) isEvent()    {}
func (SortSelected) isEvent()     {}
func (ExpansionToggled) isEvent() {}
func (NoticeShown) isEvent()      {}
func (NoticeDismissed) isEvent()  {}
