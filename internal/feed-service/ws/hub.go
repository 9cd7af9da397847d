package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/pubsub"
)

const writeWait = 5 * time.Second

// client é uma conexão com a sua própria visão (filtro, busca, ordenação)
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex // gorilla não aceita escritas concorrentes
	view feed.ViewState
}

func (c *client) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e envia a cada uma o feed renderizado
// segundo a visão daquela conexão
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients  map[*client]struct{}
	latest   feed.FeedState
	versions map[string]uint64 // última versão aplicada por origem

	Now     func() time.Time
	OnOpen  func() // métricas
	OnClose func() // métricas
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		clients:  make(map[*client]struct{}),
		versions: make(map[string]uint64),
		latest: feed.FeedState{
			Opportunities: []feed.Opportunity{},
			Multiples:     []feed.Multiple{},
			Lifecycle:     feed.Idle,
		},
		Now: time.Now,
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// A visão inicial vem da query (?sport=&q=&sort=&expanded=); mensagens "view" a trocam
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	q := r.URL.Query()
	c := &client{conn: conn, view: ClientMsg{Sport: q.Get("sport"), Q: q.Get("q"), Sort: q.Get("sort"), Expanded: q.Get("expanded")}.View()}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	latest := h.latest
	h.mu.Unlock()
	if h.OnOpen != nil {
		h.OnOpen()
	}

	_ = h.push(c, latest)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "view":
			h.mu.Lock()
			c.view = msg.View()
			latest = h.latest
			h.mu.Unlock()
			_ = h.push(c, latest)
		case "ping":
			_ = c.send(ServerMsg{Type: "pong"})
		}
	}

	// Remove a conexão ao desconectar
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	if h.OnClose != nil {
		h.OnClose()
	}
}

// Apply repassa uma atualização vinda do canal Redis. Versões menores ou
// iguais à última aplicada da mesma origem são descartadas; devolve false
// nesse caso. Versão 0 significa sem versão e é sempre aplicada.
func (h *Hub) Apply(upd pubsub.FeedUpdate) bool {
	h.mu.Lock()
	if upd.Version != 0 {
		if upd.Version <= h.versions[upd.Source] {
			h.mu.Unlock()
			return false
		}
		h.versions[upd.Source] = upd.Version
	}
	h.latest = upd.Feed
	clients := h.snapshotClients()
	h.mu.Unlock()

	h.pushAll(clients, upd.Feed)
	return true
}

// Broadcast guarda o novo estado e envia a cada cliente o modelo renderizado
func (h *Hub) Broadcast(fs feed.FeedState) {
	h.mu.Lock()
	h.latest = fs
	clients := h.snapshotClients()
	h.mu.Unlock()

	h.pushAll(clients, fs)
}

func (h *Hub) snapshotClients() []*client {
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) pushAll(clients []*client, fs feed.FeedState) {
	for _, c := range clients {
		if err := h.push(c, fs); err != nil {
			h.log.Debug("ws push failed", zap.Error(err))
		}
	}
}

// Clients devolve o número de conexões abertas
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) push(c *client, fs feed.FeedState) error {
	h.mu.RLock()
	view := c.view
	h.mu.RUnlock()
	rm := feed.BuildView(fs, view, h.Now())
	return c.send(ServerMsg{Type: "feed", Data: &rm})
}
