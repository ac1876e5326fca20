package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"barterhub-api/internal/cache"
	"barterhub-api/internal/classify"
	"barterhub-api/internal/match"
	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
)

// SwapService produces ranked swap recommendations from a point-in-time
// catalog snapshot. Enumeration is pure and read-only; concurrent
// catalog mutation just yields an eventually consistent view.
type SwapService struct {
	users      repository.UserRepository
	items      repository.ItemRepository
	classifier classify.Classifier
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewSwapService creates a swap service without result caching.
func NewSwapService(users repository.UserRepository, items repository.ItemRepository, classifier classify.Classifier) *SwapService {
	if users == nil || items == nil {
		return nil
	}
	return &SwapService{
		users:      users,
		items:      items,
		classifier: classifier,
	}
}

// NewSwapServiceWithCache creates a swap service that caches serialized
// recommendation results for ttl.
func NewSwapServiceWithCache(users repository.UserRepository, items repository.ItemRepository, classifier classify.Classifier, c cache.Cache, ttl time.Duration) *SwapService {
	s := NewSwapService(users, items, classifier)
	if s == nil || c == nil {
		return s
	}
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// RecommendParams is the caller-supplied scoring configuration. There
// are no process-wide default weights; every call carries its own.
type RecommendParams struct {
	Requester      string
	Weights        match.Weights
	PriceMode      match.PriceMode
	PriceTolerance float64
	UseCategory    bool
}

func (p RecommendParams) cacheKey() string {
	return fmt.Sprintf("recommend:%s:%g:%g:%g:%g:%s:%g:%t",
		p.Requester,
		p.Weights.Damage, p.Weights.Rating, p.Weights.Price, p.Weights.Distance,
		p.PriceMode, p.PriceTolerance, p.UseCategory)
}

// Recommend returns all admissible swap candidates for the requester,
// ranked descending by match score. An identity absent from the
// directory yields an empty list, not an error.
func (s *SwapService) Recommend(ctx context.Context, p RecommendParams) ([]match.SwapMatch, error) {
	if s.cache == nil {
		return s.enumerate(ctx, p)
	}

	data, err := s.cache.GetOrSet(ctx, p.cacheKey(), s.cacheTTL, func() ([]byte, error) {
		matches, err := s.enumerate(ctx, p)
		if err != nil {
			return nil, err
		}
		return json.Marshal(matches)
	})
	if err != nil {
		return nil, err
	}

	var matches []match.SwapMatch
	if err := json.Unmarshal(data, &matches); err != nil {
		// Stale or corrupt cache entry; recompute.
		log.Printf("[SwapService] Discarding bad cache entry: %v", err)
		_ = s.cache.Delete(ctx, p.cacheKey())
		return s.enumerate(ctx, p)
	}
	return matches, nil
}

func (s *SwapService) enumerate(ctx context.Context, p RecommendParams) ([]match.SwapMatch, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	locations := make(map[string]*model.Location, len(users))
	for _, u := range users {
		locations[u.Identity] = u.Location
	}
	locate := func(identity string) *model.Location {
		return locations[identity]
	}

	opts := match.EnumerateOptions{
		Options: match.Options{
			PriceMode:      p.PriceMode,
			PriceTolerance: p.PriceTolerance,
		},
		UseCategory: p.UseCategory,
	}
	return match.Enumerate(p.Requester, users, items, locate, s.classifier, p.Weights, opts), nil
}
