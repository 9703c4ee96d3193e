package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"aura/internal/featureflags"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"
)

// Inbound message types.
const (
	TypeJoinMoodRoom           = "join_mood_room"
	TypeLiveMoodUpdate         = "live_mood_update"
	TypeGlobalTreeContribution = "global_tree_contribution"
)

// Outbound message types.
const (
	TypeMoodUpdate = "mood_update"
	TypeTreeGrowth = "tree_growth"
)

type inboundFrame struct {
	Type               string          `json:"type"`
	Mood               string          `json:"mood"`
	Location           string          `json:"location"`
	Points             json.RawMessage `json:"points"`
	TotalContributions json.RawMessage `json:"totalContributions"`
}

// MoodUpdateFrame is sent when someone shares their mood live or posts from a location.
type MoodUpdateFrame struct {
	Type      string `json:"type"`
	Mood      string `json:"mood"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
}

// TreeGrowthFrame echoes a contribution to the shared tree. Values are passed
// through from the contributor untouched.
type TreeGrowthFrame struct {
	Type               string          `json:"type"`
	Points             json.RawMessage `json:"points,omitempty"`
	TotalContributions json.RawMessage `json:"totalContributions,omitempty"`
}

// Hub routes inbound /ws frames to the registry, through the relay when one
// is configured.
type Hub struct {
	registry *Registry
	relay    *Relay
	flags    *featureflags.Manager
	now      func() time.Time

	// relayLive is set once the relay subscription is up. Until then frames
	// are delivered locally.
	relayLive atomic.Bool
}

// NewHub wires a hub. relay may be nil for single-instance delivery.
func NewHub(registry *Registry, relay *Relay, flags *featureflags.Manager) *Hub {
	return &Hub{registry: registry, relay: relay, flags: flags, now: time.Now}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Start subscribes to the relay. Without a relay it is a no-op. When the
// subscription fails the hub keeps delivering to local clients only.
func (h *Hub) Start(ctx context.Context) error {
	if h.relay == nil {
		return nil
	}
	if err := h.relay.Subscribe(ctx, h.deliver); err != nil {
		return err
	}
	h.relayLive.Store(true)
	return nil
}

// HandleMessage processes one frame from c. Bad frames are logged and dropped;
// nothing is ever written back to the sender.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	if !c.Allow() {
		observability.WebSocketEventsTotal.WithLabelValues("unknown", "rate_limited").Inc()
		return
	}

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		observability.WebSocketEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		middleware.Logger.Debug("dropping malformed websocket frame",
			slog.String("client_id", c.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, span := observability.TraceWebSocket(context.Background(), frame.Type)
	defer span.End()

	switch frame.Type {
	case TypeJoinMoodRoom:
		c.SetMood(models.Mood(strings.ToLower(strings.TrimSpace(frame.Mood))))

	case TypeLiveMoodUpdate:
		h.publishMood(ctx, models.Mood(frame.Mood), frame.Location, c.ID)

	case TypeGlobalTreeContribution:
		payload, err := json.Marshal(TreeGrowthFrame{
			Type:               TypeTreeGrowth,
			Points:             passthrough(frame.Points),
			TotalContributions: passthrough(frame.TotalContributions),
		})
		if err != nil {
			observability.WebSocketEventsTotal.WithLabelValues(frame.Type, "error").Inc()
			return
		}
		h.publish(ctx, Envelope{Scope: ScopeAll, Payload: payload})

	default:
		observability.WebSocketEventsTotal.WithLabelValues("unknown", "ignored").Inc()
		middleware.Logger.Debug("ignoring websocket frame", slog.String("type", frame.Type))
		return
	}

	observability.WebSocketEventsTotal.WithLabelValues(frame.Type, "ok").Inc()
}

// BroadcastMoodUpdate emits a mood_update on behalf of the server, for
// example after a post with a location is created.
func (h *Hub) BroadcastMoodUpdate(ctx context.Context, mood models.Mood, location string) {
	h.publishMood(ctx, mood, location, "")
}

// Shutdown disconnects every local client.
func (h *Hub) Shutdown(_ context.Context) error {
	h.registry.Shutdown()
	return nil
}

func (h *Hub) publishMood(ctx context.Context, mood models.Mood, location, senderID string) {
	payload, err := json.Marshal(MoodUpdateFrame{
		Type:      TypeMoodUpdate,
		Mood:      string(mood),
		Location:  location,
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
	if err != nil {
		return
	}
	h.publish(ctx, Envelope{Sender: senderID, Scope: ScopeMood, Mood: mood, Payload: payload})
}

func (h *Hub) publish(ctx context.Context, env Envelope) {
	if h.relay != nil && h.relayLive.Load() {
		err := h.relay.Publish(ctx, env)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "realtime relay publish failed, delivering locally",
			slog.String("error", err.Error()),
		)
	}
	h.deliver(env)
}

func (h *Hub) deliver(env Envelope) {
	if env.Scope == ScopeMood && h.flags.EnabledGlobally(featureflags.MoodRoomFiltering) {
		h.registry.BroadcastMood(env.Payload, env.Mood, env.Sender)
		return
	}
	h.registry.Broadcast(env.Payload, env.Sender)
}

// passthrough drops JSON null so absent and null keys are both omitted.
func passthrough(v json.RawMessage) json.RawMessage {
	if len(v) == 0 || string(v) == "null" {
		return nil
	}
	return v
}
