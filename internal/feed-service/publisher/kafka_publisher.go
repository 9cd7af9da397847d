package publisher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/value-bet-feed/internal/shared/kafka"
	"github.com/radieske/value-bet-feed/pkg/contracts/events"
)

type messageWriter interface {
	sharedkafka.MessageWriter
	Close() error
}

// KafkaPublisher publica os eventos do feed (feed_refreshed e bet_exported).
type KafkaPublisher struct {
	refreshed messageWriter
	exported  messageWriter
	log       *zap.Logger
}

// NewKafkaPublisher cria um writer por tópico. Em ambiente local ou dev os
// tópicos são criados antecipadamente via controller do cluster.
func NewKafkaPublisher(brokers, topicRefreshed, topicExported, env string, log *zap.Logger) *KafkaPublisher {
	if env == "local" || env == "dev" {
		if err := EnsureTopics(context.Background(), sharedkafka.Brokers(brokers), topicRefreshed, topicExported); err != nil {
			log.Warn("failed to ensure kafka topics", zap.Error(err))
		}
	}
	return &KafkaPublisher{
		refreshed: sharedkafka.NewWriter(brokers, topicRefreshed),
		exported:  sharedkafka.NewWriter(brokers, topicExported),
		log:       log,
	}
}

// EnsureTopics cria os tópicos com 1 partição e fator de replicação 1
// (compatível com single-broker). Tópico já existente não é erro.
func EnsureTopics(ctx context.Context, brokers []string, topics ...string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("kafka brokers not provided")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}
	cconn, err := kafka.DialContext(ctx, "tcp", controller.Host+":"+strconv.Itoa(controller.Port))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer cconn.Close()

	cfgs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		cfgs = append(cfgs, kafka.TopicConfig{Topic: t, NumPartitions: 1, ReplicationFactor: 1})
	}
	if err := cconn.CreateTopics(cfgs...); err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("create topics: %w", err)
	}
	return nil
}

// PublishFeedRefreshed usa a geração como chave: eventos da mesma carga caem
// na mesma partição.
func (p *KafkaPublisher) PublishFeedRefreshed(ctx context.Context, e events.FeedRefreshed) error {
	key := strconv.FormatUint(e.Generation, 10)
	if err := sharedkafka.WriteJSON(ctx, p.refreshed, key, e); err != nil {
		p.log.Error("failed to publish feed refreshed", zap.Error(err))
		return err
	}
	p.log.Debug("published feed refreshed", zap.Uint64("generation", e.Generation))
	return nil
}

// PublishBetExported usa a chave da oportunidade como chave da mensagem.
func (p *KafkaPublisher) PublishBetExported(ctx context.Context, e events.BetExported) error {
	if err := sharedkafka.WriteJSON(ctx, p.exported, e.Key, e); err != nil {
		p.log.Error("failed to publish bet exported", zap.String("export_id", e.ExportID), zap.Error(err))
		return err
	}
	p.log.Debug("published bet exported", zap.String("export_id", e.ExportID))
	return nil
}

// Close finaliza os writers.
func (p *KafkaPublisher) Close() error {
	return errors.Join(p.refreshed.Close(), p.exported.Close())
}
