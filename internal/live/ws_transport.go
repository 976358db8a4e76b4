package live

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"

	"routegraph/dashboard/internal/logging"
)

type StompSettings struct {
	URL              string
	HandshakeTimeout time.Duration
	ConnectTimeout   time.Duration
	WriteTimeout     time.Duration
	Header           http.Header
}

func DefaultStompSettings(rawURL string) *StompSettings {
	return &StompSettings{
		URL:              rawURL,
		HandshakeTimeout: 5 * time.Second,
		ConnectTimeout:   5 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// StompTransport speaks STOMP 1.2 over a websocket, one frame per message.
type StompTransport struct {
	settings *StompSettings
	dialer   *websocket.Dialer
}

func NewStompTransport(settings *StompSettings) *StompTransport {
	return &StompTransport{
		settings: settings,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: settings.HandshakeTimeout,
		},
	}
}

// Open dials the broker and completes the CONNECT handshake.
func (t *StompTransport) Open(ctx context.Context) (Session, error) {
	u, err := url.Parse(t.settings.URL)
	if err != nil {
		return nil, fmt.Errorf("stomp: bad url: %w", err)
	}

	ws, _, err := t.dialer.DialContext(ctx, t.settings.URL, t.settings.Header)
	if err != nil {
		return nil, err
	}

	success := false
	defer func() {
		if !success {
			ws.Close()
		}
	}()

	connect, err := encodeFrame(frame.New(frame.CONNECT,
		frame.AcceptVersion, "1.2",
		frame.Host, u.Hostname(),
		frame.HeartBeat, "0,0",
	))
	if err != nil {
		return nil, err
	}
	ws.SetWriteDeadline(time.Now().Add(t.settings.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, connect); err != nil {
		return nil, err
	}

	ws.SetReadDeadline(time.Now().Add(t.settings.ConnectTimeout))
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		f, err := decodeFrame(data)
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		switch f.Command {
		case frame.CONNECTED:
			ws.SetReadDeadline(time.Time{})
			success = true
			s := &stompSession{ws: ws, writeTimeout: t.settings.WriteTimeout, closed: make(chan struct{})}
			go s.closeOnDone(ctx)
			logging.Debug("stomp session established", "url", t.settings.URL, "version", f.Header.Get(frame.Version))
			return s, nil
		case frame.ERROR:
			return nil, fmt.Errorf("stomp: connect rejected: %s", f.Header.Get(frame.Message))
		default:
			return nil, fmt.Errorf("stomp: unexpected %s frame during connect", f.Command)
		}
	}
}

type stompSession struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	nextSubID int

	closeOnce sync.Once
	closed    chan struct{}
}

// closeOnDone releases the socket when the owner's context ends, which
// unblocks a pending Receive.
func (s *stompSession) closeOnDone(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.Close()
	case <-s.closed:
	}
}

func (s *stompSession) write(f *frame.Frame) error {
	data, err := encodeFrame(f)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

func (s *stompSession) Subscribe(ctx context.Context, topic string) error {
	s.writeMu.Lock()
	id := "sub-" + strconv.Itoa(s.nextSubID)
	s.nextSubID++
	s.writeMu.Unlock()

	return s.write(frame.New(frame.SUBSCRIBE, frame.Id, id, frame.Destination, topic, frame.Ack, "auto"))
}

func (s *stompSession) Receive(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			return Message{}, err
		}
		f, err := decodeFrame(data)
		if err != nil {
			// one unreadable frame does not end the session
			logging.Warn("skipping unreadable stomp frame", "error", err)
			continue
		}
		if f == nil {
			continue
		}
		switch f.Command {
		case frame.MESSAGE:
			return Message{Topic: f.Header.Get(frame.Destination), Body: f.Body}, nil
		case frame.ERROR:
			return Message{}, fmt.Errorf("stomp: broker error: %s", f.Header.Get(frame.Message))
		}
	}
}

func (s *stompSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.write(frame.New(frame.DISCONNECT))
		err = s.ws.Close()
	})
	return err
}
