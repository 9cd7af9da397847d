package ws

import (
	"strings"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: view | ping
// Sport/Q/Sort/Expanded: usados em "view" para trocar a visão da conexão
type ClientMsg struct {
	Type     string `json:"type"`
	Sport    string `json:"sport,omitempty"`
	Q        string `json:"q,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Expanded string `json:"expanded,omitempty"`
}

// ServerMsg é enviado ao cliente: "feed" traz o modelo renderizado, "pong" responde ao ping
type ServerMsg struct {
	Type string            `json:"type"`
	Data *feed.RenderModel `json:"data,omitempty"`
}

// View converte a mensagem na visão da conexão
func (m ClientMsg) View() feed.ViewState {
	return feed.ViewState{
		Sport:    feed.ParseSportFilter(m.Sport),
		Search:   m.Q,
		Sort:     feed.ParseSortKey(m.Sort),
		Expanded: strings.ToLower(m.Expanded),
	}
}
