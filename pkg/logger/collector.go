package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher ships a batch of aggregated entries to a topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	Service        string        // value of the service field on every entry
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // unique entries before an early flush
	Topic          string
	Publisher      Publisher
	// OnPublishError is called when a flush fails. Optional.
	OnPublishError func(err error)
}

// AggregatedLogEntry counts repeats of the same error between flushes.
type AggregatedLogEntry struct {
	Service   string                 `json:"service"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

type LogCollector struct {
	config  *CollectionConfig
	entries map[string]*AggregatedLogEntry
	mutex   sync.Mutex
	flushCh chan []AggregatedLogEntry
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &LogCollector{
		config:  config,
		entries: make(map[string]*AggregatedLogEntry),
		flushCh: make(chan []AggregatedLogEntry, 8),
		ctx:     ctx,
		cancel:  cancel,
	}

	c.wg.Add(2)
	go c.periodicFlush()
	go c.publishLoop()
	return c
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := entryKey(level, message, fields, caller)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		c.entries[key] = &AggregatedLogEntry{
			Service:   c.config.Service,
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.entries) >= c.config.CountThreshold {
		c.swapLocked()
	}
}

func entryKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller}

	b, _ := json.Marshal(data)
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

// swapLocked hands the current batch to the publisher. Caller holds the mutex.
func (c *LogCollector) swapLocked() {
	if len(c.entries) == 0 {
		return
	}
	batch := make([]AggregatedLogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		batch = append(batch, *e)
	}
	c.entries = make(map[string]*AggregatedLogEntry)

	select {
	case c.flushCh <- batch:
	default:
		c.reportError(fmt.Errorf("log collector backlog full, dropped %d entries", len(batch)))
	}
}

func (c *LogCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.swapLocked()
			c.mutex.Unlock()
		case <-c.ctx.Done():
			c.mutex.Lock()
			c.swapLocked()
			c.mutex.Unlock()
			close(c.flushCh)
			return
		}
	}
}

func (c *LogCollector) publishLoop() {
	defer c.wg.Done()
	for batch := range c.flushCh {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, batch); err != nil {
			c.reportError(fmt.Errorf("publish aggregated logs: %w", err))
		}
		cancel()
	}
}

func (c *LogCollector) reportError(err error) {
	if c.config.OnPublishError != nil {
		c.config.OnPublishError(err)
	}
}

// Close flushes pending entries and waits for the publisher to drain.
func (c *LogCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
