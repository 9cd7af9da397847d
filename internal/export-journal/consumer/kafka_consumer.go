package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/value-bet-feed/internal/shared/kafka"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

// MessageReader é satisfeito por *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Journal persiste uma exportação.
type Journal interface {
	InsertExport(ctx context.Context, e events.BetExported) error
}

// Processor consome bet_exported do Kafka e grava no diário (Postgres).
// Mensagens que falham após as tentativas vão para a DLQ, quando configurada.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log     *zap.Logger
	Reader  MessageReader
	Journal Journal
	DLQ     sharedkafka.MessageWriter // opcional

	Retries int           // tentativas extras de gravação
	Backoff time.Duration // base do backoff linear entre tentativas

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			if !sleep(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem: decodifica, grava com retry e, se
// esgotar as tentativas, encaminha para a DLQ.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	var ev events.BetExported
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.ExportID == "" {
		p.Log.Warn("invalid bet_exported message", zap.Error(err), zap.ByteString("key", m.Key))
		p.fail("decode")
		p.deadLetter(ctx, m)
		return
	}

	err := p.Journal.InsertExport(ctx, ev)
	for i := 0; err != nil && i < p.Retries; i++ {
		if !sleep(ctx, p.Backoff*time.Duration(i+1)) {
			return
		}
		err = p.Journal.InsertExport(ctx, ev)
	}
	if err != nil {
		p.Log.Error("journal insert failed", zap.String("export_id", ev.ExportID), zap.Error(err))
		p.fail("db_insert")
		p.deadLetter(ctx, m)
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
	p.Log.Debug("export journaled", zap.String("export_id", ev.ExportID))
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	dlq := kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}
	if err := p.DLQ.WriteMessages(ctx, dlq); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// sleep devolve false se o contexto terminar antes do prazo.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
