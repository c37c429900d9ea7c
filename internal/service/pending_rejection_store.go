package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tone-drift/internal/domain"
)

// PendingRejectionStore recuerda, por revisor, la marca cuyo rechazo espera comentario.
type PendingRejectionStore interface {
	Put(ctx context.Context, reviewer, brandID string, ttl time.Duration) error
	Take(ctx context.Context, reviewer string) (string, error)
}

type pendingRejection struct {
	brandID string
	exp     time.Time
}

type memoryPendingRejectionStore struct {
	mu    sync.Mutex
	items map[string]pendingRejection
}

func NewMemoryPendingRejectionStore() PendingRejectionStore {
	return &memoryPendingRejectionStore{items: make(map[string]pendingRejection)}
}

func (s *memoryPendingRejectionStore) Put(_ context.Context, reviewer, brandID string, ttl time.Duration) error {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" || strings.TrimSpace(brandID) == "" {
		return errors.New("pending rejection: reviewer and brand are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[reviewer] = pendingRejection{brandID: brandID, exp: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryPendingRejectionStore) Take(_ context.Context, reviewer string) (string, error) {
	reviewer = strings.TrimSpace(reviewer)
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[reviewer]
	if !ok {
		return "", domain.ErrNoPendingRejection
	}
	delete(s.items, reviewer)
	if time.Now().UTC().After(item.exp) {
		return "", domain.ErrNoPendingRejection
	}
	return item.brandID, nil
}

type redisPendingClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

type redisPendingRejectionStore struct {
	client redisPendingClient
	prefix string
}

func NewRedisPendingRejectionStore(client *redis.Client) PendingRejectionStore {
	if client == nil {
		return nil
	}
	return &redisPendingRejectionStore{client: client, prefix: "tone:reject:pending:"}
}

func (s *redisPendingRejectionStore) Put(ctx context.Context, reviewer, brandID string, ttl time.Duration) error {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" || strings.TrimSpace(brandID) == "" {
		return errors.New("pending rejection: reviewer and brand are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+reviewer, brandID, ttl).Err()
}

func (s *redisPendingRejectionStore) Take(ctx context.Context, reviewer string) (string, error) {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return "", domain.ErrNoPendingRejection
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	brandID, err := s.client.GetDel(ctx, s.prefix+reviewer).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNoPendingRejection
		}
		return "", err
	}
	return brandID, nil
}
