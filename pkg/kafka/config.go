package kafka

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/segmentio/kafka-go"
)

// ProducerConfig describes the result and log writer. Zero fields take the
// defaults in the tags.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int           `default:"-1"`
	Compression  string        `default:"snappy"`
	MaxAttempts  int           `default:"5"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	BatchSize    int           `default:"100"`
	BatchBytes   int           `default:"1048576"`
	BatchTimeout time.Duration `default:"50ms"`
	Async        bool
	// RoundRobin spreads unkeyed load; keyed results otherwise stay on one
	// partition per symbol.
	RoundRobin bool
	// AutoCreateTopics lets the writer create missing topics; off in production.
	AutoCreateTopics bool
}

func (c *ProducerConfig) writer() (*kafka.Writer, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("producer defaults: %w", err)
	}

	bal := kafka.Balancer(&kafka.Hash{})
	if c.RoundRobin {
		bal = &kafka.RoundRobin{}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Balancer:               bal,
		RequiredAcks:           kafka.RequiredAcks(c.RequiredAcks),
		Compression:            parseCompression(c.Compression),
		MaxAttempts:            c.MaxAttempts,
		WriteTimeout:           c.WriteTimeout,
		ReadTimeout:            c.ReadTimeout,
		BatchSize:              c.BatchSize,
		BatchBytes:             int64(c.BatchBytes),
		BatchTimeout:           c.BatchTimeout,
		Async:                  c.Async,
		AllowAutoTopicCreation: c.AutoCreateTopics,
	}, nil
}
