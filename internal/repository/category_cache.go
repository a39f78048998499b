package repository

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/cache"
)

const categoryKeyPrefix = "categories:"

// CategoryFinder is the lookup decorated by CachedCategoryRepository.
type CategoryFinder interface {
	FindActiveByNames(ctx context.Context, names []string) ([]model.Category, error)
}

// CachedCategoryRepository serves category subtrees from a cache, falling
// back to the wrapped finder on a miss. Cache errors never fail a lookup.
type CachedCategoryRepository struct {
	next  CategoryFinder
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedCategoryRepository wraps next with a cache-aside layer.
func NewCachedCategoryRepository(next CategoryFinder, c cache.Cache, ttl time.Duration) *CachedCategoryRepository {
	return &CachedCategoryRepository{next: next, cache: c, ttl: ttl}
}

// FindActiveByNames implements CategoryFinder.
func (r *CachedCategoryRepository) FindActiveByNames(ctx context.Context, names []string) ([]model.Category, error) {
	key := categoryCacheKey(names)

	var nodes []model.Category
	hit, err := r.cache.Get(ctx, key, &nodes)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("category cache read failed")
	} else if hit {
		return nodes, nil
	}

	nodes, err = r.next.FindActiveByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, nodes, r.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("category cache write failed")
	}
	return nodes, nil
}

// categoryCacheKey is independent of the order and repetition of names.
// Each name is length-prefixed so no two name sets share a key.
func categoryCacheKey(names []string) string {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	b.WriteString(categoryKeyPrefix)
	for _, n := range sorted {
		b.WriteString(strconv.Itoa(len(n)))
		b.WriteByte(':')
		b.WriteString(n)
	}
	return b.String()
}
