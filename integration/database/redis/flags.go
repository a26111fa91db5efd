package redis

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/logger"
)

// Flags is the Redis-backed session flag store. Flags are advisory caches:
// every value is re-derivable from a fresh identity fetch, so all Redis
// failures are swallowed after a log line and reads degrade to false.
type Flags struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// FlagsOption configures the flag store.
type FlagsOption func(*Flags)

// WithFlagsLogger sets the logger used for swallowed failures.
func WithFlagsLogger(log *slog.Logger) FlagsOption {
	return func(f *Flags) {
		if log != nil {
			f.log = log
		}
	}
}

// WithKeyPrefix namespaces every key, for shared Redis instances.
func WithKeyPrefix(prefix string) FlagsOption {
	return func(f *Flags) { f.prefix = prefix }
}

// NewFlags creates a flag store over client. TTL bounds how long a flag
// survives without being rewritten; zero means no expiry.
func NewFlags(client *redis.Client, ttl time.Duration, opts ...FlagsOption) *Flags {
	f := &Flags{
		client: client,
		ttl:    ttl,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flags) key(k string) string { return f.prefix + k }

func (f *Flags) GetBool(ctx context.Context, key string) bool {
	v, err := f.client.Get(ctx, f.key(key)).Result()
	if err != nil {
		if err != redis.Nil {
			f.log.WarnContext(ctx, "flag read failed", logger.Error(err))
		}
		return false
	}
	return v == "1" || v == "true"
}

func (f *Flags) SetBool(ctx context.Context, key string, v bool) {
	val := "0"
	if v {
		val = "1"
	}
	if err := f.client.Set(ctx, f.key(key), val, f.ttl).Err(); err != nil {
		f.log.WarnContext(ctx, "flag write failed", logger.Error(err))
	}
}

func (f *Flags) Delete(ctx context.Context, key string) {
	if err := f.client.Del(ctx, f.key(key)).Err(); err != nil {
		f.log.WarnContext(ctx, "flag delete failed", logger.Error(err))
	}
}

// Signal is the Redis Pub/Sub auth-changed channel: every connected process
// hears every announcement, like browser tabs sharing a storage event.
type Signal struct {
	client  *redis.Client
	channel string
	log     *slog.Logger

	mu   sync.Mutex
	subs map[int]context.CancelFunc
	next int
}

// SignalOption configures the signal.
type SignalOption func(*Signal)

// WithSignalLogger sets the logger used for subscription diagnostics.
func WithSignalLogger(log *slog.Logger) SignalOption {
	return func(s *Signal) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSignal creates a signal over client publishing to channel; an empty
// channel name falls back to "auth:changed".
func NewSignal(client *redis.Client, channel string, opts ...SignalOption) *Signal {
	if channel == "" {
		channel = "auth:changed"
	}
	s := &Signal{
		client:  client,
		channel: channel,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:    make(map[int]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Announce publishes the auth-changed event. Best-effort: failures are
// logged and swallowed, matching the advisory nature of the signal.
func (s *Signal) Announce(ctx context.Context) {
	payload := time.Now().UnixMilli()
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.log.WarnContext(ctx, "auth-changed publish failed", logger.Error(err))
	}
}

// Subscribe delivers every peer announcement to fn until the returned cancel
// runs. Delivery happens on a dedicated goroutine per subscription.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	ctx, stop := context.WithCancel(context.Background())

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = stop
	s.mu.Unlock()

	sub := s.client.Subscribe(ctx, s.channel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	return func() {
		s.mu.Lock()
		if stop, ok := s.subs[id]; ok {
			delete(s.subs, id)
			stop()
		}
		s.mu.Unlock()
	}
}
