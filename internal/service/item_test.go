package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub-api/internal/classify"
	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
)

func newItemFixture(t *testing.T) (*ItemService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, store.UpsertUser(context.Background(), model.User{Identity: "owner@x.com"}))
	return NewItemService(store, store, classify.Category, classify.PriceBand), store
}

func TestUpload_PopulatesDerivedFields(t *testing.T) {
	svc, store := newItemFixture(t)

	item, err := svc.Upload(context.Background(), UploadItemInput{
		Owner:     "owner@x.com",
		Title:     "Acoustic guitar with case",
		Tags:      []string{"instrument"},
		Condition: 85,
		Price:     750,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "music", item.Category)
	assert.Equal(t, "low", item.PriceBand)
	assert.Equal(t, model.DefaultRating, item.Rating)
	assert.False(t, item.CreatedAt.IsZero())

	stored, err := store.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, *stored)
}

func TestUpload_KeepsExplicitCategory(t *testing.T) {
	svc, _ := newItemFixture(t)

	item, err := svc.Upload(context.Background(), UploadItemInput{
		Owner:     "owner@x.com",
		Title:     "Acoustic guitar with case",
		Condition: 85,
		Price:     750,
		Category:  "collectibles",
	})
	require.NoError(t, err)
	assert.Equal(t, "collectibles", item.Category)
}

func TestUpload_Validation(t *testing.T) {
	svc, _ := newItemFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		in     UploadItemInput
		status int
	}{
		{
			"condition above 100",
			UploadItemInput{Owner: "owner@x.com", Title: "x", Condition: 101, Price: 10},
			http.StatusBadRequest,
		},
		{
			"negative condition",
			UploadItemInput{Owner: "owner@x.com", Title: "x", Condition: -1, Price: 10},
			http.StatusBadRequest,
		},
		{
			"negative price",
			UploadItemInput{Owner: "owner@x.com", Title: "x", Condition: 50, Price: -1},
			http.StatusBadRequest,
		},
		{
			"unregistered owner",
			UploadItemInput{Owner: "ghost@x.com", Title: "x", Condition: 50, Price: 10},
			http.StatusNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tc.in)
			requireAPIError(t, err, tc.status)
		})
	}
}

func TestSearch_MatchesTitleAndTags(t *testing.T) {
	svc, store := newItemFixture(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, model.User{Identity: "other@x.com"}))

	_, err := svc.Upload(ctx, UploadItemInput{
		Owner: "owner@x.com", Title: "Road bike", Tags: []string{"carbon"}, Condition: 70, Price: 400,
	})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, UploadItemInput{
		Owner: "other@x.com", Title: "City cruiser", Tags: []string{"bike", "commute"}, Condition: 60, Price: 150,
	})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "bike", "")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	// Tag-only match survives an owner exclusion.
	found, err = svc.Search(ctx, "bike", "owner@x.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "City cruiser", found[0].Title)

	none, err := svc.Search(ctx, "spaceship", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUserRegisterAndGet(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewUserService(store)
	ctx := context.Background()

	loc := &model.Location{Lat: 52.52, Lng: 13.405}
	registered, err := svc.Register(ctx, "a@x.com", "Alex", loc)
	require.NoError(t, err)
	assert.False(t, registered.UpdatedAt.IsZero())

	got, err := svc.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.DisplayName)
	require.NotNil(t, got.Location)
	assert.Equal(t, 52.52, got.Location.Lat)

	// Re-registering overwrites in place.
	_, err = svc.Register(ctx, "a@x.com", "Alexandra", nil)
	require.NoError(t, err)
	got, err = svc.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", got.DisplayName)
	assert.Nil(t, got.Location)

	_, err = svc.Get(ctx, "missing@x.com")
	requireAPIError(t, err, http.StatusNotFound)
}
