package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc struct {
	topic string
	fn    func(context.Context, []byte) error
}

func (h handlerFunc) Topic() string                              { return h.topic }
func (h handlerFunc) Handle(ctx context.Context, b []byte) error { return h.fn(ctx, b) }

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestEncode(t *testing.T) {
	b, err := Encode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = Encode("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(b))

	b, err = Encode(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = Encode(make(chan int))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Gzip, parseCompression("gzip"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Snappy, parseCompression(""))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
}

func TestProducerConfigWriter(t *testing.T) {
	_, err := (&ProducerConfig{}).writer()
	assert.ErrorContains(t, err, "brokers are required")

	cfg := ProducerConfig{Brokers: []string{"k1:9092", "k2:9092"}, Compression: "zstd"}
	w, err := cfg.writer()
	require.NoError(t, err)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, 5, w.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, w.BatchTimeout)
	assert.False(t, w.AllowAutoTopicCreation)

	cfg = ProducerConfig{Brokers: []string{"k1:9092"}, RoundRobin: true, AutoCreateTopics: true}
	w, err = cfg.writer()
	require.NoError(t, err)
	assert.IsType(t, &kafka.RoundRobin{}, w.Balancer)
	assert.True(t, w.AllowAutoTopicCreation)
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.Error(t, err)
}

func TestStartWithoutHandlers(t *testing.T) {
	c := newTestConsumer(t, 0)
	assert.Error(t, c.Start())
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt <= 6; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 40*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 40*time.Millisecond)
	}
	d := backoffWithJitter(0, 0, 1)
	assert.GreaterOrEqual(t, d, 25*time.Millisecond)
	assert.LessOrEqual(t, d, 50*time.Millisecond)
}

func TestHandleWithRetry(t *testing.T) {
	msg := &message{topic: "jobs", data: []byte("x")}

	t.Run("succeeds after failures", func(t *testing.T) {
		c := newTestConsumer(t, 3)
		var calls int32
		h := handlerFunc{topic: "jobs", fn: func(context.Context, []byte) error {
			if atomic.AddInt32(&calls, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		}}
		err, attempts := c.handleWithRetry(h, msg)
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after retry max", func(t *testing.T) {
		c := newTestConsumer(t, 2)
		h := handlerFunc{topic: "jobs", fn: func(context.Context, []byte) error { return errors.New("boom") }}
		err, attempts := c.handleWithRetry(h, msg)
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 3, attempts)
	})

	t.Run("panic is an error", func(t *testing.T) {
		c := newTestConsumer(t, 0)
		h := handlerFunc{topic: "jobs", fn: func(context.Context, []byte) error { panic("bad") }}
		err, attempts := c.handleWithRetry(h, msg)
		assert.ErrorContains(t, err, "handler panic: bad")
		assert.Equal(t, 1, attempts)
	})

	t.Run("before hook error skips handler", func(t *testing.T) {
		c := newTestConsumer(t, 3)
		c.WithConsumerHook(HookFuncs{Before: func(ctx context.Context, _ string, km kafka.Message, b []byte) (context.Context, kafka.Message, []byte, error) {
			return ctx, km, b, &HookError{Code: "ERR_VALIDATION"}
		}})
		called := false
		h := handlerFunc{topic: "jobs", fn: func(context.Context, []byte) error {
			called = true
			return nil
		}}
		err, _ := c.handleWithRetry(h, msg)
		assert.EqualError(t, err, "ERR_VALIDATION")
		assert.False(t, called)
	})

	t.Run("stop interrupts backoff", func(t *testing.T) {
		c, err := NewConsumer(
			WithConsumerBrokers([]string{"localhost:9092"}),
			WithConsumerRetry(5, time.Hour, time.Hour),
		)
		require.NoError(t, err)
		close(c.stopChan)
		h := handlerFunc{topic: "jobs", fn: func(context.Context, []byte) error { return errors.New("boom") }}
		herr, attempts := c.handleWithRetry(h, msg)
		assert.Error(t, herr)
		assert.Equal(t, 1, attempts)
	})
}

func TestHookChain(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, b []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(b, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))

	ctx, km, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte(">"))
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", km, data, nil)

	assert.Equal(t, ">ab", string(data))
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func TestHookChainRecoversPanic(t *testing.T) {
	chain := NewHookChain(HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("hook")
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { panic("after") },
	})

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("keep"))
	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "ERR_PANIC", hookErr.Code)
	assert.Equal(t, "keep", string(data))

	assert.NotPanics(t, func() { chain.AfterHandle(context.Background(), "t", kafka.Message{}, nil, nil) })
}

func TestTraceHook(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: TraceHeader, Value: []byte("abc")}}}
	ctx, _, _, err := TraceHook{}.BeforeHandle(context.Background(), "t", km, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	_, ok := ctx.Value(CtxStartTime).(time.Time)
	assert.True(t, ok)

	ctx, _, _, err = TraceHook{}.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.NoError(t, err)
	assert.Len(t, TraceIDFromContext(ctx), 36)
}

func TestPartitionLockIsStable(t *testing.T) {
	c := newTestConsumer(t, 0)
	a := c.partitionLock("t", 1)
	assert.Same(t, a, c.partitionLock("t", 1))
	assert.NotSame(t, a, c.partitionLock("t", 2))
}
