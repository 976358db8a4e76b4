package live

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/metrics"
)

func fastSettings() *ChannelSettings {
	s := DefaultChannelSettings()
	s.ReconnectDelay = 10 * time.Millisecond
	return s
}

func TestChannel_ConnectIsIdempotent(t *testing.T) {
	transport := &fakeTransport{}
	ch := NewChannel(transport, &recordingHandler{}, fastSettings(), nil)
	defer ch.Close()

	ch.Connect(context.Background())
	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, time.Second, 5*time.Millisecond)
	ch.Connect(context.Background())

	sessions := transport.opened()
	require.Len(t, sessions, 1)
	assert.Equal(t, constants.PushTopics(), sessions[0].subscribed())
}

func TestChannel_DispatchAndDropMalformed(t *testing.T) {
	transport := &fakeTransport{}
	handler := &recordingHandler{}
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	ch := NewChannel(transport, handler, fastSettings(), reg)
	defer ch.Close()

	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, time.Second, 5*time.Millisecond)
	s := transport.opened()[0]

	s.msgs <- Message{Topic: constants.TopicRoutes, Body: []byte(`{not json`)}
	s.msgs <- Message{Topic: constants.TopicRoutes, Body: []byte(`{"entity":"airport","action":"create","data":{"id":1}}`)}
	s.msgs <- Message{Topic: constants.TopicRoutes, Body: []byte(`{"entity":"route","action":"create","data":{"id":1,"name":"R1","rating":4}}`)}
	s.msgs <- Message{Topic: constants.TopicLocations, Body: []byte(`{"entity":"location","action":"delete","data":{"id":3}}`)}

	require.Eventually(t, func() bool {
		r, l, _ := handler.counts()
		return r == 1 && l == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateConnected, ch.State(), "bad frames must not drop the connection")
	assert.Len(t, transport.opened(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ChangeEventsDropped.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ChangeEventsDropped.WithLabelValues("unknown_entity")))
}

func TestChannel_ReconnectResubscribes(t *testing.T) {
	transport := &fakeTransport{failures: 1}
	handler := &recordingHandler{}
	ch := NewChannel(transport, handler, fastSettings(), nil)
	defer ch.Close()

	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return len(transport.opened()) == 1 && ch.State() == StateConnected }, time.Second, 5*time.Millisecond)

	transport.opened()[0].drop()

	require.Eventually(t, func() bool { return len(transport.opened()) == 2 && ch.State() == StateConnected }, time.Second, 5*time.Millisecond)
	second := transport.opened()[1]
	assert.Equal(t, constants.PushTopics(), second.subscribed())

	second.msgs <- Message{Topic: constants.TopicCoordinates, Body: []byte(`{"entity":"coordinates","action":"update","data":{"id":2,"x":1,"y":2}}`)}
	require.Eventually(t, func() bool {
		_, _, c := handler.counts()
		return c == 1
	}, time.Second, 5*time.Millisecond)
}

func TestChannel_CloseDisconnects(t *testing.T) {
	transport := &fakeTransport{}
	ch := NewChannel(transport, &recordingHandler{}, fastSettings(), nil)

	assert.Equal(t, StateDisconnected, ch.State())
	ch.Close()

	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, time.Second, 5*time.Millisecond)
	ch.Close()
	assert.Equal(t, StateDisconnected, ch.State())

	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return ch.State() == StateConnected }, time.Second, 5*time.Millisecond)
	ch.Close()
	assert.Len(t, transport.opened(), 2)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}
