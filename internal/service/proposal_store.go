package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tone-drift/internal/domain"
)

// ProposalStore guarda como mucho una propuesta pendiente por marca.
// Put reemplaza la anterior; Take la consume solo si el jti coincide.
type ProposalStore interface {
	Put(ctx context.Context, jti string, p domain.CorrectionProposal, ttl time.Duration) error
	Take(ctx context.Context, brandID, jti string) (domain.CorrectionProposal, error)
}

type memoryProposal struct {
	jti      string
	proposal domain.CorrectionProposal
	exp      time.Time
}

type memoryProposalStore struct {
	mu    sync.Mutex
	items map[string]memoryProposal
}

func NewMemoryProposalStore() ProposalStore {
	return &memoryProposalStore{items: make(map[string]memoryProposal)}
}

func (s *memoryProposalStore) Put(_ context.Context, jti string, p domain.CorrectionProposal, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" || strings.TrimSpace(p.BrandID) == "" {
		return domain.ErrProposalInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.BrandID] = memoryProposal{jti: jti, proposal: p, exp: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryProposalStore) Take(_ context.Context, brandID, jti string) (domain.CorrectionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[brandID]
	if !ok || item.jti != jti {
		return domain.CorrectionProposal{}, domain.ErrProposalInvalid
	}
	delete(s.items, brandID)
	if time.Now().UTC().After(item.exp) {
		return domain.CorrectionProposal{}, domain.ErrProposalInvalid
	}
	return item.proposal, nil
}

// redisTakeProposalScript compara el jti guardado y borra la clave en una sola operacion.
// Valor: "<jti>\n<json>".
const redisTakeProposalScript = `
local v = redis.call("GET", KEYS[1])
if not v then
  return false
end
local sep = string.find(v, "\n", 1, true)
if not sep or string.sub(v, 1, sep - 1) ~= ARGV[1] then
  return false
end
redis.call("DEL", KEYS[1])
return string.sub(v, sep + 1)
`

type redisProposalClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisProposalStore struct {
	client redisProposalClient
	prefix string
}

func NewRedisProposalStore(client *redis.Client) ProposalStore {
	if client == nil {
		return nil
	}
	return &redisProposalStore{client: client, prefix: "tone:proposal:"}
}

func (s *redisProposalStore) Put(ctx context.Context, jti string, p domain.CorrectionProposal, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || strings.TrimSpace(p.BrandID) == "" {
		return domain.ErrProposalInvalid
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+p.BrandID, jti+"\n"+string(payload), ttl).Err()
}

func (s *redisProposalStore) Take(ctx context.Context, brandID, jti string) (domain.CorrectionProposal, error) {
	if strings.TrimSpace(brandID) == "" || strings.TrimSpace(jti) == "" {
		return domain.CorrectionProposal{}, domain.ErrProposalInvalid
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := s.client.Eval(ctx, redisTakeProposalScript, []string{s.prefix + brandID}, jti).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CorrectionProposal{}, domain.ErrProposalInvalid
		}
		return domain.CorrectionProposal{}, err
	}
	var p domain.CorrectionProposal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.CorrectionProposal{}, fmt.Errorf("%w: %v", domain.ErrProposalInvalid, err)
	}
	return p, nil
}
