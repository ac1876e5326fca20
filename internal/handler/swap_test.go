package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub-api/internal/classify"
	"barterhub-api/internal/model"
	"barterhub-api/internal/repository"
	"barterhub-api/internal/service"
)

func newSwapHandler(t *testing.T) *SwapHandler {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, model.User{Identity: "a@x.com"}))
	require.NoError(t, store.UpsertUser(ctx, model.User{Identity: "b@x.com"}))
	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "a1", OwnerIdentity: "a@x.com", Title: "road bike",
		Price: 300, Condition: 75, Rating: model.DefaultRating,
	}))
	require.NoError(t, store.CreateItem(ctx, model.Item{
		ID: "b1", OwnerIdentity: "b@x.com", Title: "city bike",
		Price: 280, Condition: 85, Rating: model.DefaultRating,
	}))

	return NewSwapHandler(service.NewSwapService(store, store, classify.Category))
}

func recommend(t *testing.T, h *SwapHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/swaps/recommend?"+query, nil)
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	return rec
}

func TestSwapRecommend_Success(t *testing.T) {
	h := newSwapHandler(t)

	rec := recommend(t, h, "user=a@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			OwnItem       model.Item `json:"own_item"`
			CandidateItem model.Item `json:"candidate_item"`
			MatchScore    float64    `json:"match_score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "a1", body.Data[0].OwnItem.ID)
	assert.Equal(t, "b1", body.Data[0].CandidateItem.ID)
	assert.Greater(t, body.Data[0].MatchScore, 0.0)
}

func TestSwapRecommend_UnknownUserIsEmptyList(t *testing.T) {
	h := newSwapHandler(t)

	rec := recommend(t, h, "user=ghost@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.Data)
}

func TestSwapRecommend_BadRequests(t *testing.T) {
	h := newSwapHandler(t)

	cases := []struct {
		name  string
		query string
	}{
		{"missing user", ""},
		{"unknown price mode", "user=a@x.com&priceMode=fuzzy"},
		{"negative weight", "user=a@x.com&wPrice=-1"},
		{"non-numeric weight", "user=a@x.com&wDamage=heavy"},
		{"negative tolerance", "user=a@x.com&priceMode=tolerance&priceTolerance=-5"},
		{"bad useCategory", "user=a@x.com&useCategory=maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recommend(t, h, tc.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Success bool `json:"success"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
		})
	}
}

func TestSwapRecommend_ToleranceFiltersCandidates(t *testing.T) {
	h := newSwapHandler(t)

	// 280 vs 300 is within a tolerance of 50 but outside 10.
	rec := recommend(t, h, "user=a@x.com&priceMode=tolerance&priceTolerance=10&wPrice=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data)
}
