package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed-service/pubsub"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa o estado recebido para os clientes WebSocket conectados via Hub
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Desserializa para pubsub.FeedUpdate
// - Chama hub.Apply, que descarta versões antigas e renderiza por conexão
//
// O canal devolvido é fechado quando a inscrição termina.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) <-chan struct{} {
	sub := r.Subscribe(ctx, channel)
	// aguarda a confirmação da inscrição para não perder a primeira mensagem
	if _, err := sub.Receive(ctx); err != nil {
		log.Warn("redis subscribe failed", zap.String("channel", channel), zap.Error(err))
	}
	ch := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var upd pubsub.FeedUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil || upd.Type != pubsub.TypeFeed {
					log.Warn("ws subscriber ignored message", zap.Error(err))
					continue
				}
				if !hub.Apply(upd) {
					log.Debug("ws subscriber dropped stale update", zap.String("source", upd.Source), zap.Uint64("version", upd.Version))
				}
			}
		}
	}()
	return done
}
