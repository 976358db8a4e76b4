package live

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisTransport receives change events relayed onto Redis pub/sub channels
// named after the push topics.
type RedisTransport struct {
	client *redis.Client
}

func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (t *RedisTransport) Open(ctx context.Context) (Session, error) {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &redisSession{client: t.client}, nil
}

type redisSession struct {
	client *redis.Client

	mu     sync.Mutex
	pubsub *redis.PubSub
}

func (s *redisSession) Subscribe(ctx context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub == nil {
		s.pubsub = s.client.Subscribe(ctx, topic)
		// wait for the confirmation so a bad connection surfaces here
		_, err := s.pubsub.Receive(ctx)
		return err
	}
	return s.pubsub.Subscribe(ctx, topic)
}

func (s *redisSession) Receive(ctx context.Context) (Message, error) {
	s.mu.Lock()
	ps := s.pubsub
	s.mu.Unlock()
	if ps == nil {
		<-ctx.Done()
		return Message{}, ctx.Err()
	}

	msg, err := ps.ReceiveMessage(ctx)
	if err != nil {
		return Message{}, err
	}
	return Message{Topic: msg.Channel, Body: []byte(msg.Payload)}, nil
}

func (s *redisSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	s.pubsub = nil
	return err
}
