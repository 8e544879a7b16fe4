package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

const cacheNamespace = "attendance"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps cache reads and writes with metrics. Cache failures are
// logged and otherwise behave like misses.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// OwnerKey builds a key in the owner's namespace. Segments are query-escaped,
// so separators and glob characters in user input cannot merge two scopes and
// an empty segment stays empty.
func OwnerKey(ownerID, kind string, parts ...string) string {
	segments := make([]string, 0, len(parts)+3)
	segments = append(segments, cacheNamespace, url.QueryEscape(ownerID), url.QueryEscape(kind))
	for _, part := range parts {
		segments = append(segments, url.QueryEscape(part))
	}
	return strings.Join(segments, ":")
}

// OwnerPattern matches every key of the owner.
func OwnerPattern(ownerID string) string {
	return cacheNamespace + ":" + url.QueryEscape(ownerID) + ":*"
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores the value in cache using the default TTL when ttl is not positive.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateOwner drops every cached payload of the owner.
func (s *CacheService) InvalidateOwner(ctx context.Context, ownerID string) error {
	if !s.Enabled() {
		return nil
	}
	pattern := OwnerPattern(ownerID)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.metrics.RecordCacheInvalidationFailure()
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
