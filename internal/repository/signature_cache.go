package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedSignatureRepository es un read-through de GetByBrand sobre redis.
// Si redis falla se sirve directo desde el repositorio base.
type CachedSignatureRepository struct {
	SignatureRepository
	client redisKV
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

func NewCachedSignatureRepository(base SignatureRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) SignatureRepository {
	if client == nil {
		return base
	}
	return newCachedSignatureRepository(base, client, ttl, logger)
}

func newCachedSignatureRepository(base SignatureRepository, client redisKV, ttl time.Duration, logger *zap.Logger) *CachedSignatureRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSignatureRepository{
		SignatureRepository: base,
		client:              client,
		ttl:                 ttl,
		prefix:              "tone:signature:",
		logger:              logger,
	}
}

func (r *CachedSignatureRepository) GetByBrand(ctx context.Context, brandID string) (domain.ToneSignature, error) {
	if sig, ok := r.readCache(ctx, brandID); ok {
		return sig, nil
	}

	sig, err := r.SignatureRepository.GetByBrand(ctx, brandID)
	if err != nil {
		return domain.ToneSignature{}, err
	}
	r.writeCache(ctx, sig)
	return sig, nil
}

func (r *CachedSignatureRepository) Upsert(ctx context.Context, sig domain.ToneSignature) (domain.ToneSignature, error) {
	saved, err := r.SignatureRepository.Upsert(ctx, sig)
	if err != nil {
		return domain.ToneSignature{}, err
	}
	r.writeCache(ctx, saved)
	return saved, nil
}

func (r *CachedSignatureRepository) readCache(ctx context.Context, brandID string) (domain.ToneSignature, bool) {
	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	raw, err := r.client.Get(cctx, r.prefix+brandID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("signature cache read failed", zap.String("brand_id", brandID), zap.Error(err))
		}
		return domain.ToneSignature{}, false
	}
	var sig domain.ToneSignature
	if err := json.Unmarshal(raw, &sig); err != nil {
		r.invalidate(ctx, brandID)
		return domain.ToneSignature{}, false
	}
	return sig, true
}

func (r *CachedSignatureRepository) writeCache(ctx context.Context, sig domain.ToneSignature) {
	payload, err := json.Marshal(sig)
	if err != nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := r.client.Set(cctx, r.prefix+sig.BrandID, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("signature cache write failed", zap.String("brand_id", sig.BrandID), zap.Error(err))
		r.invalidate(ctx, sig.BrandID)
	}
}

func (r *CachedSignatureRepository) invalidate(ctx context.Context, brandID string) {
	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = r.client.Del(cctx, r.prefix+brandID).Err()
}
