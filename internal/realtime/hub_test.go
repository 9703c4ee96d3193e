package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"aura/internal/featureflags"
	"aura/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newLocalHub(t *testing.T, flags string) (*Hub, *Client, *Client) {
	t.Helper()
	hub := NewHub(NewRegistry(0), nil, featureflags.NewManager(flags))
	sender, listener := NewClient(nil, 0), NewClient(nil, 0)
	require.NoError(t, hub.Registry().Add(sender))
	require.NoError(t, hub.Registry().Add(listener))
	return hub, sender, listener
}

func decodeFrame(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHub_LiveMoodUpdateGoesToOthersOnly(t *testing.T) {
	hub, sender, listener := newLocalHub(t, "")
	hub.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }

	hub.HandleMessage(sender, []byte(`{"type":"live_mood_update","mood":"happy","location":"Lisbon"}`))

	require.Len(t, listener.Send, 1)
	assert.Empty(t, sender.Send)
	frame := decodeFrame(t, <-listener.Send)
	assert.Equal(t, "mood_update", frame["type"])
	assert.Equal(t, "happy", frame["mood"])
	assert.Equal(t, "Lisbon", frame["location"])
	assert.Equal(t, "2026-10-18T09:30:00.000Z", frame["timestamp"])
}

func TestHub_TreeContributionGoesToEveryone(t *testing.T) {
	hub, sender, listener := newLocalHub(t, "")

	hub.HandleMessage(sender, []byte(`{"type":"global_tree_contribution","points":5,"totalContributions":1024}`))

	for _, c := range []*Client{sender, listener} {
		require.Len(t, c.Send, 1)
		frame := decodeFrame(t, <-c.Send)
		assert.Equal(t, "tree_growth", frame["type"])
		assert.Equal(t, float64(5), frame["points"])
		assert.Equal(t, float64(1024), frame["totalContributions"])
	}

	hub.HandleMessage(sender, []byte(`{"type":"global_tree_contribution"}`))
	frame := decodeFrame(t, <-listener.Send)
	assert.NotContains(t, frame, "points")
	assert.NotContains(t, frame, "totalContributions")
}

func TestHub_DropsBadFrames(t *testing.T) {
	hub, sender, listener := newLocalHub(t, "")

	hub.HandleMessage(sender, []byte(`not json`))
	hub.HandleMessage(sender, []byte(`{"type":"teleport"}`))
	hub.HandleMessage(sender, []byte(`{"type":"live_mood_update","mood":42}`))

	assert.Empty(t, sender.Send)
	assert.Empty(t, listener.Send)
}

func TestHub_MoodRoomFilteringFlag(t *testing.T) {
	for _, tt := range []struct {
		name     string
		flags    string
		expected int
	}{
		{"off delivers to every room", "", 1},
		{"on keeps updates in their room", featureflags.MoodRoomFiltering + "=on", 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			hub, sender, listener := newLocalHub(t, tt.flags)
			hub.HandleMessage(listener, []byte(`{"type":"join_mood_room","mood":"calm"}`))
			assert.Equal(t, models.MoodCalm, listener.Mood())

			hub.HandleMessage(sender, []byte(`{"type":"live_mood_update","mood":"stressed","location":"Oslo"}`))
			assert.Len(t, listener.Send, tt.expected)
		})
	}
}

func TestHub_InboundRateLimit(t *testing.T) {
	hub := NewHub(NewRegistry(0), nil, nil)
	sender, listener := NewClient(nil, 1), NewClient(nil, 0)
	require.NoError(t, hub.Registry().Add(sender))
	require.NoError(t, hub.Registry().Add(listener))

	for i := 0; i < 10; i++ {
		hub.HandleMessage(sender, []byte(`{"type":"live_mood_update","mood":"happy","location":"Rome"}`))
	}
	assert.Len(t, listener.Send, 2)
}

func TestHub_ServerMoodUpdateReachesEveryone(t *testing.T) {
	hub, sender, listener := newLocalHub(t, "")

	hub.BroadcastMoodUpdate(context.Background(), models.MoodGrateful, "Kyoto")

	assert.Len(t, sender.Send, 1)
	assert.Len(t, listener.Send, 1)
}

func TestHub_RelayFansOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newRedis := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubA := NewHub(NewRegistry(0), NewRelay(newRedis()), nil)
	hubB := NewHub(NewRegistry(0), NewRelay(newRedis()), nil)
	require.NoError(t, hubA.Start(ctx))
	require.NoError(t, hubB.Start(ctx))

	sender, neighbour := NewClient(nil, 0), NewClient(nil, 0)
	remote := NewClient(nil, 0)
	require.NoError(t, hubA.Registry().Add(sender))
	require.NoError(t, hubA.Registry().Add(neighbour))
	require.NoError(t, hubB.Registry().Add(remote))

	hubA.HandleMessage(sender, []byte(`{"type":"live_mood_update","mood":"excited","location":"Accra"}`))

	assert.Eventually(t, func() bool {
		return len(neighbour.Send) == 1 && len(remote.Send) == 1
	}, testEventuallyTimeout, testPollInterval)
	assert.Never(t, func() bool { return len(sender.Send) > 0 }, 10*testPollInterval, testPollInterval)
}

func TestNewRelay_NilRedis(t *testing.T) {
	assert.Nil(t, NewRelay(nil))
}
