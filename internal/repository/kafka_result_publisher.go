package repository

import (
	"context"
	"fmt"

	"FinSignal/internal/domain/models"
	applogger "FinSignal/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KeyedPublisher is the part of the Kafka producer the result publisher needs.
type KeyedPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers ...kafka.Header) error
	Close() error
}

// KafkaResultPublisher publishes finished analyses keyed by symbol, so the
// results of one symbol stay ordered on a single partition.
type KafkaResultPublisher struct {
	producer KeyedPublisher
	topic    string
	log      *applogger.Logger
}

func NewKafkaResultPublisher(p KeyedPublisher, topic string, l *applogger.Logger) *KafkaResultPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	return &KafkaResultPublisher{producer: p, topic: topic, log: l}
}

func (p *KafkaResultPublisher) PublishResult(ctx context.Context, result models.AnalysisJobResult) error {
	headers := []kafka.Header{{Key: "status", Value: []byte(result.Status)}}
	if result.JobID != "" {
		headers = append(headers, kafka.Header{Key: "job_id", Value: []byte(result.JobID)})
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(result.Symbol), result, headers...); err != nil {
		return fmt.Errorf("publish result for %s: %w", result.Symbol, err)
	}
	p.log.Debug("analysis result published",
		applogger.String("topic", p.topic),
		applogger.String("symbol", result.Symbol),
		applogger.String("status", result.Status),
	)
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	return p.producer.Close()
}
