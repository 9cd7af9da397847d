package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
	"github.com/radieske/value-bet-feed/internal/feed-service/ws"
)

// WSClient acompanha o feed-service pelo WebSocket e entrega cada modelo
// renderizado recebido. A visão (filtro, busca, ordenação) vai na query.
type WSClient struct {
	URL      string // base do feed-service, ex.: http://localhost:8090
	View     ws.ClientMsg
	Log      *zap.Logger
	OnUpdate func(feed.RenderModel)

	Backoff    time.Duration // espera antes de reconectar; 0 = 3s
	MaxBackoff time.Duration // teto do backoff exponencial; 0 = 30s
}

// Start mantém a conexão até o contexto ser cancelado.
// Em caso de desconexão, tenta reconectar com backoff exponencial.
func (c *WSClient) Start(ctx context.Context) error {
	target, err := c.endpoint()
	if err != nil {
		return err
	}
	base, ceil := c.Backoff, c.MaxBackoff
	if base <= 0 {
		base = 3 * time.Second
	}
	if ceil <= 0 {
		ceil = 30 * time.Second
	}

	wait := base
	for {
		connected, err := c.connectAndListen(ctx, target)
		if ctx.Err() != nil {
			c.Log.Info("context canceled, stopping ws client")
			return ctx.Err()
		}
		if connected {
			wait = base
		}
		c.Log.Warn("connection closed", zap.Error(err), zap.Duration("retry_in", wait))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, ceil)
	}
}

// endpoint troca o esquema http(s) por ws(s) e monta a query da visão
func (c *WSClient) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(c.URL, "/") + "/ws")
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	q := url.Values{}
	for k, v := range map[string]string{"sport": c.View.Sport, "q": c.View.Q, "sort": c.View.Sort, "expanded": c.View.Expanded} {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// connectAndListen devolve connected=true se o handshake chegou a acontecer.
func (c *WSClient) connectAndListen(ctx context.Context, target string) (connected bool, err error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	c.Log.Info("connected to feed ws", zap.String("url", target))

	// fecha a conexão quando o contexto termina para destravar o ReadMessage
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return true, nil
			}
			return true, err
		}

		var msg ws.ServerMsg
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			continue
		}
		if msg.Type != "feed" || msg.Data == nil {
			continue
		}
		if c.OnUpdate != nil {
			c.OnUpdate(*msg.Data)
		}
	}
}
