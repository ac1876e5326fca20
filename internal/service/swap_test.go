package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub-api/internal/cache"
	"barterhub-api/internal/classify"
	"barterhub-api/internal/match"
	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
)

func seedCatalog(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	users := []model.User{
		{Identity: "a@x.com", DisplayName: "A"},
		{Identity: "b@x.com", DisplayName: "B"},
		{Identity: "c@x.com", DisplayName: "C"},
	}
	for _, u := range users {
		require.NoError(t, store.UpsertUser(ctx, u))
	}

	items := []model.Item{
		{ID: "a1", OwnerIdentity: "a@x.com", Title: "gaming laptop", Price: 900, Condition: 80, Rating: model.DefaultRating},
		{ID: "b1", OwnerIdentity: "b@x.com", Title: "mechanical keyboard", Price: 850, Condition: 90, Rating: model.DefaultRating},
		{ID: "c1", OwnerIdentity: "c@x.com", Title: "broken tablet", Price: 100, Condition: 15, Rating: model.DefaultRating},
	}
	for _, it := range items {
		require.NoError(t, store.CreateItem(ctx, it))
	}
}

func TestRecommend_UnknownRequesterIsEmpty(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := NewSwapService(store, store, classify.Category)

	got, err := svc.Recommend(context.Background(), RecommendParams{
		Requester: "ghost@x.com",
		Weights:   match.Weights{Price: 1},
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommend_RanksCandidatesDescending(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := NewSwapService(store, store, classify.Category)

	got, err := svc.Recommend(context.Background(), RecommendParams{
		Requester: "a@x.com",
		Weights:   match.Weights{Price: 1, Damage: 1},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// The close-priced healthy keyboard must outrank the broken tablet.
	assert.Equal(t, "b1", got[0].CandidateItem.ID)
	assert.Equal(t, "c1", got[1].CandidateItem.ID)
	assert.GreaterOrEqual(t, got[0].MatchScore, got[1].MatchScore)
	for _, m := range got {
		assert.Equal(t, "a1", m.OwnItem.ID)
	}
}

func TestRecommend_CachedResultSurvivesCatalogChange(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := NewSwapServiceWithCache(store, store, classify.Category, cache.NewMemoryCache(), time.Minute)

	ctx := context.Background()
	params := RecommendParams{Requester: "a@x.com", Weights: match.Weights{Price: 1, Damage: 1}}

	first, err := svc.Recommend(ctx, params)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A new catalog entry within the TTL must not show up yet.
	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "b2", OwnerIdentity: "b@x.com", Title: "spare monitor",
		Price: 900, Condition: 95, Rating: model.DefaultRating,
	}))

	second, err := svc.Recommend(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Different parameters miss the cache and see the new item.
	fresh, err := svc.Recommend(ctx, RecommendParams{
		Requester: "a@x.com",
		Weights:   match.Weights{Price: 1, Damage: 2},
	})
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestRecommend_WithoutCacheSeesEveryChange(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := NewSwapService(store, store, classify.Category)

	ctx := context.Background()
	params := RecommendParams{Requester: "a@x.com", Weights: match.Weights{Price: 1}}

	first, err := svc.Recommend(ctx, params)
	require.NoError(t, err)
	require.Len(t, first, 2)

	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "c2", OwnerIdentity: "c@x.com", Title: "bookshelf",
		Price: 120, Condition: 70, Rating: model.DefaultRating,
	}))

	second, err := svc.Recommend(ctx, params)
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestRecommend_CategoryFilterUsesClassifier(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, model.User{Identity: "a@x.com"}))
	require.NoError(t, store.UpsertUser(ctx, model.User{Identity: "b@x.com"}))
	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "a1", OwnerIdentity: "a@x.com", Title: "hardcover novel",
		Price: 20, Condition: 80, Rating: model.DefaultRating,
	}))
	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "b1", OwnerIdentity: "b@x.com", Title: "cordless drill",
		Price: 20, Condition: 80, Rating: model.DefaultRating,
	}))

	svc := NewSwapService(store, store, classify.Category)
	params := RecommendParams{
		Requester:   "a@x.com",
		Weights:     match.Weights{Price: 1},
		UseCategory: true,
	}

	got, err := svc.Recommend(ctx, params)
	require.NoError(t, err)
	assert.Empty(t, got, "books and tools must not pair when category filtering is on")

	params.UseCategory = false
	got, err = svc.Recommend(ctx, params)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
