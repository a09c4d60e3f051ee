package hub

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHub() *Hub {
	return New(observability.NewMetricsForTesting(), discardLogger())
}

func event(scope string) domain.LifecycleEvent {
	return domain.LifecycleEvent{
		Kind:    "disaster",
		Action:  domain.ActionCreate,
		Payload: json.RawMessage(`{"id":"x"}`),
		Scope:   scope,
	}
}

func drain(ch <-chan []byte) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-ch:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestHub_ScopedEventReachesOnlySubscribers(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	c2 := h.Connect("c2")
	c3 := h.Connect("c3")

	h.Join("c1", "D1")
	h.Join("c2", "D1")
	h.Join("c3", "D2")

	h.Publish(event("D1"))

	assert.Len(t, drain(c1), 1)
	assert.Len(t, drain(c2), 1)
	assert.Empty(t, drain(c3), "a connection subscribed only to D2 never sees a D1 event")
}

func TestHub_ConnectionMayWatchMultipleDisasters(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")

	h.Join("c1", "D1")
	h.Join("c1", "D2")

	h.Publish(event("D1"))
	h.Publish(event("D2"))

	assert.Len(t, drain(c1), 2)
}

func TestHub_GlobalEventReachesEveryConnection(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	c2 := h.Connect("c2")
	h.Join("c1", "D1")
	// c2 has no subscriptions at all.

	h.Publish(event(domain.ScopeGlobal))

	assert.Len(t, drain(c1), 1)
	assert.Len(t, drain(c2), 1)
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")

	h.Join("c1", "D1")
	h.Join("c1", "D1")

	h.Publish(event("D1"))
	assert.Len(t, drain(c1), 1, "at most one delivery per current subscriber")
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	h.Join("c1", "D1")
	h.Leave("c1", "D1")

	h.Publish(event("D1"))
	assert.Empty(t, drain(c1))
}

func TestHub_DisconnectRemovesAllMemberships(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	h.Join("c1", "D1")
	h.Join("c1", "D2")

	h.Disconnect("c1")

	assert.False(t, h.Subscribed("c1", "D1"))
	assert.False(t, h.Subscribed("c1", "D2"))

	_, open := <-c1
	assert.False(t, open, "disconnect closes the outbound channel")

	// Publishing after disconnect must not panic or deliver.
	h.Publish(event("D1"))
}

func TestHub_DisconnectUnknownConnectionIsSafe(t *testing.T) {
	h := newHub()
	h.Disconnect("ghost")
}

func TestHub_JoinBeforeConnectIsIgnored(t *testing.T) {
	h := newHub()
	h.Join("ghost", "D1")
	assert.False(t, h.Subscribed("ghost", "D1"))
}

func TestHub_JoinAfterPublishDoesNotBackfill(t *testing.T) {
	h := newHub()
	h.Publish(event("D1"))

	c1 := h.Connect("c1")
	h.Join("c1", "D1")
	assert.Empty(t, drain(c1), "membership is snapshotted at publish time")
}

func TestHub_PublishOrderPreservedWithinDisaster(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	h.Join("c1", "D1")

	for _, action := range []domain.Action{domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete} {
		h.Publish(domain.LifecycleEvent{Kind: "report", Action: action, Scope: "D1"})
	}

	got := drain(c1)
	require.Len(t, got, 3)
	for i, want := range []domain.Action{domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete} {
		var env envelope
		require.NoError(t, json.Unmarshal(got[i], &env))
		assert.Equal(t, want, env.Action)
	}
}

func TestHub_EnvelopeShape(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	h.Join("c1", "D1")

	h.Publish(event("D1"))

	got := drain(c1)
	require.Len(t, got, 1)

	var env envelope
	require.NoError(t, json.Unmarshal(got[0], &env))
	assert.Equal(t, "disaster", env.Kind)
	assert.Equal(t, domain.ActionCreate, env.Action)
	assert.Equal(t, "D1", env.DisasterID)
	assert.JSONEq(t, `{"id":"x"}`, string(env.Payload))
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := newHub()
	c1 := h.Connect("c1")
	h.Join("c1", "D1")

	// Overfill the buffer; Publish must not block.
	for i := 0; i < sendBuffer+10; i++ {
		h.Publish(event("D1"))
	}

	assert.Len(t, drain(c1), sendBuffer)
}
