// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"loan_backend/internal/feature/loans/domain"
	"loan_backend/internal/feature/loans/domain/entity"
	"loan_backend/internal/feature/loans/usecase"
)

// DefaultTTL is used when a non-positive TTL is given.
const DefaultTTL = 30 * time.Second

// CachingLoanRepository decorates a LoanRepository with a Redis read-through
// cache of each user's loan list. Writes go to the inner repository first and
// then drop the affected user's entry.
type CachingLoanRepository struct {
	inner     usecase.LoanRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.LoanRepository = (*CachingLoanRepository)(nil)

// NewCachingLoanRepository decorates a LoanRepository with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses "loans".
// A nil rdb makes every call pass straight through.
func NewCachingLoanRepository(rdb *redis.Client, ttl time.Duration, inner usecase.LoanRepository, namespace string) *CachingLoanRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "loans"
	}
	return &CachingLoanRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the loan and invalidates the owner's cached list.
func (c *CachingLoanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	if err := c.inner.Create(ctx, loan); err != nil {
		return err
	}
	if c.rdb != nil {
		c.invalidate(ctx, loan.UserID)
	}
	return nil
}

// FindByID is never cached.
func (c *CachingLoanRepository) FindByID(ctx context.Context, id uint) (*entity.Loan, error) {
	return c.inner.FindByID(ctx, id)
}

// UpdateStatus updates the loan and invalidates its owner's cached list.
// An unknown loan id has no owner and therefore nothing to invalidate.
func (c *CachingLoanRepository) UpdateStatus(ctx context.Context, id uint, status entity.Status) error {
	if err := c.inner.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}

	loan, err := c.inner.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrLoanNotFound) {
			slog.Warn("loan cache: owner lookup failed", "loan_id", id, "error", err)
		}
		return nil
	}
	c.invalidate(ctx, loan.UserID)
	return nil
}

// ListByUser returns the cached list when present, otherwise reads through and caches the result.
func (c *CachingLoanRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Loan, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.ListByUser(ctx, userID)
	}

	key := c.cacheKey(userID)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out []entity.Loan
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		slog.Warn("loan cache: read failed", "key", key, "error", err)
	}

	// 2) Fallback to database
	out, err := c.inner.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.Warn("loan cache: write failed", "key", key, "error", err)
		}
	}

	return out, nil
}

func (c *CachingLoanRepository) invalidate(ctx context.Context, userID uint) {
	key := c.cacheKey(userID)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		slog.Warn("loan cache: invalidation failed", "key", key, "error", err)
	}
}

// cacheKey generates the cache key of a user's loan list.
func (c *CachingLoanRepository) cacheKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", c.namespace, userID)
}
