package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub-api/internal/model"
)

func catalogItem(id, owner string, price float64, condition int, category string) model.Item {
	return model.Item{
		ID:            id,
		OwnerIdentity: owner,
		Title:         id,
		Price:         price,
		Condition:     condition,
		Rating:        model.DefaultRating,
		Category:      category,
	}
}

func TestEnumerate_UnknownRequesterYieldsEmptyList(t *testing.T) {
	users := []model.User{{Identity: "a@example.com"}}
	items := []model.Item{catalogItem("i1", "a@example.com", 100, 80, "")}

	got := Enumerate("ghost@example.com", users, items, noLocations, nil, Weights{Price: 1}, EnumerateOptions{})
	assert.Empty(t, got)
}

func TestEnumerate_MirroredScoring(t *testing.T) {
	users := []model.User{{Identity: "a@example.com"}, {Identity: "b@example.com"}}
	items := []model.Item{
		catalogItem("own", "a@example.com", 100, 80, ""),
		catalogItem("theirs", "b@example.com", 120, 60, ""),
	}

	got := Enumerate("a@example.com", users, items, noLocations, nil,
		Weights{Price: 50, Damage: 50}, EnumerateOptions{})
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, "own", m.OwnItem.ID)
	assert.Equal(t, "theirs", m.CandidateItem.ID)
	// priceScore = 1 - 20/120 ≈ 0.8333; damage 0.60 vs 0.80
	assert.Equal(t, 0.717, m.ScoreFrom)
	assert.Equal(t, 0.817, m.ScoreTo)
	assert.Equal(t, 0.767, m.MatchScore)
}

func TestEnumerate_RankedDescending(t *testing.T) {
	users := []model.User{
		{Identity: "a@example.com"},
		{Identity: "b@example.com"},
		{Identity: "c@example.com"},
	}
	items := []model.Item{
		catalogItem("a1", "a@example.com", 100, 70, ""),
		catalogItem("a2", "a@example.com", 450, 30, ""),
		catalogItem("b1", "b@example.com", 110, 95, ""),
		catalogItem("b2", "b@example.com", 4000, 20, ""),
		catalogItem("c1", "c@example.com", 95, 55, ""),
	}

	got := Enumerate("a@example.com", users, items, noLocations, nil,
		Weights{Price: 1, Damage: 1, Rating: 1}, EnumerateOptions{})
	require.Len(t, got, 6) // 2 own items x 3 foreign items

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].MatchScore, got[i-1].MatchScore,
			"match scores must be non-increasing")
	}
	for _, m := range got {
		assert.NotEqual(t, m.OwnItem.OwnerIdentity, m.CandidateItem.OwnerIdentity,
			"paired items must have different owners")
		assert.Equal(t, "a@example.com", m.OwnItem.OwnerIdentity)
	}
}

func TestEnumerate_ScoresRoundedToThreeDecimals(t *testing.T) {
	users := []model.User{{Identity: "a@example.com"}, {Identity: "b@example.com"}}
	items := []model.Item{
		catalogItem("a1", "a@example.com", 100, 33, ""),
		catalogItem("b1", "b@example.com", 137, 71, ""),
	}

	got := Enumerate("a@example.com", users, items, noLocations, nil,
		Weights{Price: 1, Damage: 2}, EnumerateOptions{})
	require.Len(t, got, 1)

	for _, v := range []float64{got[0].ScoreFrom, got[0].ScoreTo, got[0].MatchScore} {
		assert.Equal(t, math.Round(v*1000)/1000, v)
	}
}

func TestEnumerate_CategoryFilter(t *testing.T) {
	users := []model.User{{Identity: "a@example.com"}, {Identity: "b@example.com"}}

	t.Run("stored categories conflict", func(t *testing.T) {
		items := []model.Item{
			catalogItem("a1", "a@example.com", 100, 80, "books"),
			catalogItem("b1", "b@example.com", 100, 80, "tools"),
		}
		got := Enumerate("a@example.com", users, items, noLocations, nil,
			Weights{Price: 1}, EnumerateOptions{UseCategory: true})
		assert.Empty(t, got)
	})

	t.Run("matching categories pass", func(t *testing.T) {
		items := []model.Item{
			catalogItem("a1", "a@example.com", 100, 80, "books"),
			catalogItem("b1", "b@example.com", 100, 80, "books"),
		}
		got := Enumerate("a@example.com", users, items, noLocations, nil,
			Weights{Price: 1}, EnumerateOptions{UseCategory: true})
		assert.Len(t, got, 1)
	})

	t.Run("classifier backfills missing categories", func(t *testing.T) {
		items := []model.Item{
			catalogItem("novel", "a@example.com", 100, 80, ""),
			catalogItem("drill", "b@example.com", 100, 80, ""),
		}
		classifier := func(text string) string {
			if text == "novel" {
				return "books"
			}
			return "tools"
		}
		got := Enumerate("a@example.com", users, items, noLocations, classifier,
			Weights{Price: 1}, EnumerateOptions{UseCategory: true})
		assert.Empty(t, got)
	})

	t.Run("filter disabled keeps conflicting pairs", func(t *testing.T) {
		items := []model.Item{
			catalogItem("a1", "a@example.com", 100, 80, "books"),
			catalogItem("b1", "b@example.com", 100, 80, "tools"),
		}
		got := Enumerate("a@example.com", users, items, noLocations, nil,
			Weights{Price: 1}, EnumerateOptions{})
		assert.Len(t, got, 1)
	})
}

func TestEnumerate_ToleranceCutoff(t *testing.T) {
	users := []model.User{{Identity: "a@example.com"}, {Identity: "b@example.com"}}
	items := []model.Item{
		catalogItem("a1", "a@example.com", 100, 80, ""),
		catalogItem("near", "b@example.com", 130, 80, ""),
		catalogItem("far", "b@example.com", 400, 80, ""),
	}

	opts := EnumerateOptions{
		Options: Options{PriceMode: PriceModeTolerance, PriceTolerance: 50},
	}
	got := Enumerate("a@example.com", users, items, noLocations, nil, Weights{Price: 1, Damage: 1}, opts)

	// The 400-priced item exceeds the tolerance and is cut before scoring.
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].CandidateItem.ID)
}
