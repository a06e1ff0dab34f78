package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

const adminCacheKey = "creditledger:admins"

// CachedDirectory lists administrators from the account table through a
// short-lived cache.
type CachedDirectory struct {
	accountRepo AccountRepository
	cache       Cache
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewCachedDirectory creates a new CachedDirectory. A nil cache always reads
// through to the repository.
func NewCachedDirectory(accountRepo AccountRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultAdminCacheTTL
	}
	return &CachedDirectory{
		accountRepo: accountRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

// ListAdministrators returns the ids of every admin account.
func (d *CachedDirectory) ListAdministrators(ctx context.Context) ([]int64, error) {
	if d.cache != nil {
		if data, err := d.cache.Get(ctx, adminCacheKey); err == nil && data != nil {
			var ids []int64
			if err := json.Unmarshal(data, &ids); err == nil {
				return ids, nil
			}
		}
	}

	ids, err := d.accountRepo.ListIDsByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		data, _ := json.Marshal(ids)
		if err := d.cache.Set(ctx, adminCacheKey, data, d.ttl); err != nil {
			d.logger.Warn().Err(err).Msg("failed to cache administrator list")
		}
	}

	return ids, nil
}

// Invalidate drops the cached list, e.g. after an admin account is opened.
func (d *CachedDirectory) Invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Delete(ctx, adminCacheKey); err != nil {
		d.logger.Warn().Err(err).Msg("failed to invalidate administrator cache")
	}
}
