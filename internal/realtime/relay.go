package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel shared by every instance.
const Channel = "aura:realtime"

// Delivery scopes.
const (
	ScopeAll  = "all"
	ScopeMood = "mood"
)

// Envelope wraps a frame crossing instances. Sender is the client to skip;
// Mood is set for ScopeMood deliveries.
type Envelope struct {
	Origin  string          `json:"origin"`
	Sender  string          `json:"sender,omitempty"`
	Scope   string          `json:"scope"`
	Mood    models.Mood     `json:"mood,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Relay publishes envelopes to Redis and feeds received ones back to a handler.
type Relay struct {
	rdb    *redis.Client
	origin string
}

// NewRelay returns nil when rdb is nil; a nil *Relay means local-only delivery.
func NewRelay(rdb *redis.Client) *Relay {
	if rdb == nil {
		return nil
	}
	return &Relay{rdb: rdb, origin: uuid.NewString()}
}

// Origin identifies this instance in published envelopes.
func (r *Relay) Origin() string {
	return r.origin
}

func (r *Relay) Publish(ctx context.Context, env Envelope) error {
	env.Origin = r.origin
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	ctx, span := observability.TraceRedisOperation(ctx, "publish")
	err = r.rdb.Publish(ctx, Channel, data).Err()
	observability.EndSpan(span, err)
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
	}
	return err
}

// Subscribe starts a goroutine delivering every envelope on Channel to
// onEnvelope until ctx is cancelled. It returns once the subscription is live.
func (r *Relay) Subscribe(ctx context.Context, onEnvelope func(Envelope)) error {
	sub := r.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					middleware.Logger.Warn("dropping malformed relay envelope", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if rec := recover(); rec != nil {
							middleware.Logger.Error("panic in realtime relay",
								slog.Any("panic", rec),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onEnvelope(env)
				}()
			}
		}
	}()

	return nil
}
