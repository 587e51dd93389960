package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/repository"
	apperrors "github.com/depositdefenders/accounts-service/pkg/util"
)

const (
	landingCacheKey = "content:landing"
	pricingCacheKey = "content:pricing"
)

// ContentService serves marketing content with a Redis cache in front of the
// store. Cache failures degrade to direct reads, never to request failures.
type ContentService struct {
	content  repository.ContentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewContentService builds the service. cache may be nil, which disables
// caching entirely.
func NewContentService(content repository.ContentRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ContentService {
	return &ContentService{content: content, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// LandingPage returns the published landing page.
func (s *ContentService) LandingPage(ctx context.Context) (*domain.LandingPage, error) {
	var cached domain.LandingPage
	if s.readCache(ctx, landingCacheKey, &cached) {
		return &cached, nil
	}

	page, err := s.content.GetLandingPage(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("landing page", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.writeCache(ctx, landingCacheKey, page)
	return page, nil
}

// PricingTiers returns all tiers in display order; an empty list is valid.
func (s *ContentService) PricingTiers(ctx context.Context) ([]domain.PricingTier, error) {
	var cached []domain.PricingTier
	if s.readCache(ctx, pricingCacheKey, &cached) {
		return cached, nil
	}

	tiers, err := s.content.ListPricingTiers(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if tiers == nil {
		tiers = []domain.PricingTier{}
	}

	s.writeCache(ctx, pricingCacheKey, tiers)
	return tiers, nil
}

func (s *ContentService) readCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cacheTTL <= 0 {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("content cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("content cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ContentService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("content cache write failed", zap.String("key", key), zap.Error(err))
	}
}
