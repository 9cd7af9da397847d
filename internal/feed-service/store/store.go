package store

import (
	"sync"
	"time"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// State junta o estado do feed (controller) e o estado de visão (usuário).
type State struct {
	Feed feed.FeedState
	View feed.ViewState
	// Version cresce a cada Dispatch. Listeners são chamados fora do lock e
	// podem receber estados fora de ordem; quem repassa o estado deve
	// descartar versões menores que a última vista.
	Version uint64
}

// Initial é o estado antes da primeira carga.
func Initial() State {
	return State{
		Feed: feed.FeedState{
			Opportunities: []feed.Opportunity{},
			Multiples:     []feed.Multiple{},
			Lifecycle:     feed.Idle,
		},
		View: feed.DefaultView(),
	}
}

// Reduce aplica um evento ao estado e devolve o novo estado. Função pura:
// as listas nunca são alteradas no lugar, só substituídas.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case LoadStarted:
		if ev.Generation < s.Feed.Generation {
			return s
		}
		s.Feed.Generation = ev.Generation
		s.Feed.ErrorMessage = ""
		if ev.Mode == ModeSilent {
			s.Feed.Lifecycle = feed.Refreshing
			return s
		}
		s.Feed.Lifecycle = feed.Loading
		s.Feed.Opportunities = []feed.Opportunity{}
		s.Feed.Multiples = []feed.Multiple{}
		s.View.Expanded = ""

	case LoadSucceeded:
		if ev.Generation != s.Feed.Generation {
			return s // resposta atrasada de uma busca já substituída
		}
		s.Feed.Opportunities = orEmpty(feed.WithIDs(ev.Opportunities))
		s.Feed.Multiples = orEmpty(ev.Multiples)
		s.Feed.LastUpdatedAt = ev.At
		s.Feed.Lifecycle = feed.Ready
		s.Feed.ErrorMessage = ""

	case LoadFailed:
		if ev.Generation != s.Feed.Generation {
			return s
		}
		s.Feed.Lifecycle = feed.Error
		s.Feed.ErrorMessage = ev.Message

	case SnapshotRestored:
		// só vale antes de qualquer busca; uma busca em andamento tem precedência
		if s.Feed.Lifecycle != feed.Idle {
			return s
		}
		s.Feed.Opportunities = orEmpty(feed.WithIDs(ev.Snapshot.Opportunities))
		s.Feed.Multiples = orEmpty(ev.Snapshot.Multiples)
		s.Feed.LastUpdatedAt = ev.Snapshot.UpdatedAt
		s.Feed.Lifecycle = feed.Ready

	case SportSelected:
		s.View.Sport = ev.Sport
	case SearchChanged:
		s.View.Search = ev.Query
	case SortSelected:
		s.View.Sort = ev.Key

	case ExpansionToggled:
		visible := feed.Visible(s.Feed.Opportunities, s.View)
		if ev.Index < 0 || ev.Index >= len(visible) {
			return s
		}
		key := visible[ev.Index].Ident()
		if s.View.Expanded == key {
			s.View.Expanded = ""
		} else {
			s.View.Expanded = key
		}

	case NoticeShown:
		n := ev.Notice
		s.View.Notice = &n
	case NoticeDismissed:
		s.View.Notice = nil
	}
	return s
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Listener é chamado após cada Dispatch com o estado resultante.
type Listener func(State)

// Store serializa os eventos vindos de handlers HTTP, do poller e da CLI.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{state: Initial(), listeners: make(map[int]Listener)}
}

// Dispatch aplica o evento e notifica os listeners fora do lock, para que
// um listener possa disparar novos eventos sem deadlock.
func (s *Store) Dispatch(e Event) State {
	s.mu.Lock()
	next := Reduce(s.state, e)
	next.Version = s.state.Version + 1
	s.state = next
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(next)
	}
	return next
}

// Subscribe registra um listener e devolve a função que o remove.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// State devolve uma cópia do estado atual.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View deriva o modelo de renderização do estado atual.
func (s *Store) View(now time.Time) feed.RenderModel {
	st := s.State()
	return feed.BuildView(st.Feed, st.View, now)
}

// ViewAs deriva o modelo usando uma visão externa (ex.: query string de uma
// requisição), sem alterar a visão guardada no store.
func (s *Store) ViewAs(vs feed.ViewState, now time.Time) feed.RenderModel {
	return feed.BuildView(s.State().Feed, vs, now)
}
