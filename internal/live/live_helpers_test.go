package live

import (
	"context"
	"errors"
	"sync"

	"routegraph/dashboard/internal/models"
)

// recordingHandler stores every event it receives.
type recordingHandler struct {
	mu          sync.Mutex
	routes      []models.ChangeEvent[models.Route]
	locations   []models.ChangeEvent[models.Location]
	coordinates []models.ChangeEvent[models.Coordinates]
}

func (h *recordingHandler) HandleRoute(e models.ChangeEvent[models.Route]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, e)
}

func (h *recordingHandler) HandleLocation(e models.ChangeEvent[models.Location]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.locations = append(h.locations, e)
}

func (h *recordingHandler) HandleCoordinates(e models.ChangeEvent[models.Coordinates]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.coordinates = append(h.coordinates, e)
}

func (h *recordingHandler) counts() (int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.routes), len(h.locations), len(h.coordinates)
}

var errSessionLost = errors.New("session lost")

type fakeSession struct {
	mu     sync.Mutex
	topics []string
	msgs   chan Message
	once   sync.Once
	lost   chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{msgs: make(chan Message, 16), lost: make(chan struct{})}
}

func (s *fakeSession) Subscribe(_ context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	return nil
}

func (s *fakeSession) subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...)
}

func (s *fakeSession) Receive(ctx context.Context) (Message, error) {
	select {
	case m := <-s.msgs:
		return m, nil
	case <-s.lost:
		return Message{}, errSessionLost
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (s *fakeSession) Close() error {
	s.drop()
	return nil
}

func (s *fakeSession) drop() { s.once.Do(func() { close(s.lost) }) }

// fakeTransport hands out sessions in order; failures are consumed first.
type fakeTransport struct {
	mu       sync.Mutex
	failures int
	sessions []*fakeSession
}

func (t *fakeTransport) Open(ctx context.Context) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failures > 0 {
		t.failures--
		return nil, errors.New("dial refused")
	}
	s := newFakeSession()
	t.sessions = append(t.sessions, s)
	return s, nil
}

func (t *fakeTransport) opened() []*fakeSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*fakeSession(nil), t.sessions...)
}
