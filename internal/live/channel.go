package live

import (
	"context"
	"sync"
	"time"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
)

// State of the live channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

type ChannelSettings struct {
	ReconnectDelay time.Duration
	Topics         []string
}

func DefaultChannelSettings() *ChannelSettings {
	return &ChannelSettings{
		ReconnectDelay: constants.DefaultReconnectDelay,
		Topics:         constants.PushTopics(),
	}
}

// Channel keeps one session to the push broker open, subscribes every topic
// on each (re)connect and feeds decoded events to its handler. Messages are
// handled one at a time in arrival order.
type Channel struct {
	transport Transport
	handler   Handler
	settings  *ChannelSettings
	metrics   *metrics.MetricsRegistry

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewChannel(transport Transport, handler Handler, settings *ChannelSettings, m *metrics.MetricsRegistry) *Channel {
	if settings == nil {
		settings = DefaultChannelSettings()
	}
	return &Channel{
		transport: transport,
		handler:   handler,
		settings:  settings,
		metrics:   m,
		state:     StateDisconnected,
	}
}

// Connect starts the connection loop. It does nothing while the channel is
// already connecting or connected. The loop stops when ctx ends or Close is called.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisconnected {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.setStateLocked(StateConnecting)
	go c.run(runCtx, c.done)
}

// Close stops the loop and waits until the session is released.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(s)
}

func (c *Channel) setStateLocked(s State) {
	c.state = s
	c.metrics.SetChannelState(int(s))
}

func (c *Channel) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.setState(StateDisconnected)

	for {
		err := c.serve(ctx)
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)
		logging.Warn("live channel lost", "error", err, "retry_in", c.settings.ReconnectDelay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.settings.ReconnectDelay):
		}
		c.metrics.Reconnect()
	}
}

// serve runs one session until it fails.
func (c *Channel) serve(ctx context.Context) error {
	session, err := c.transport.Open(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	for _, topic := range c.settings.Topics {
		if err := session.Subscribe(ctx, topic); err != nil {
			return err
		}
	}
	c.setState(StateConnected)
	logging.Info("live channel connected", "topics", c.settings.Topics)

	for {
		msg, err := session.Receive(ctx)
		if err != nil {
			return err
		}
		if err := Dispatch(c.handler, msg); err != nil {
			c.metrics.EventDropped(dropReason(err))
			logging.Warn("dropping push message", "topic", msg.Topic, "error", err)
		}
	}
}
