package match

import (
	"math"
	"sort"

	"barterhub-api/internal/classify"
	"barterhub-api/internal/model"
)

// SwapMatch is one candidate swap: the requester gives OwnItem and
// receives CandidateItem. Scores are rounded to 3 decimal places.
type SwapMatch struct {
	OwnItem       model.Item `json:"own_item"`
	CandidateItem model.Item `json:"candidate_item"`
	ScoreFrom     float64    `json:"score_from"`
	ScoreTo       float64    `json:"score_to"`
	MatchScore    float64    `json:"match_score"`
}

// EnumerateOptions configures candidate enumeration.
type EnumerateOptions struct {
	Options
	UseCategory bool
}

// Enumerate produces every admissible swap candidate for the requester,
// ranked descending by match score. Ties keep enumeration order.
// An unknown requester yields an empty list, not an error.
//
// Each pair is scored from both sides: scoreFrom rates the candidate
// item against the requester's own item, scoreTo mirrors the roles for
// the other user. The match score is their mean.
//
// Complexity is O(U*I^2) over users and items per user; acceptable for
// moderate catalogs, and callers may paginate on top without changing
// the scoring semantics.
func Enumerate(requester string, users []model.User, items []model.Item, locate LocationLookup, classifier classify.Classifier, w Weights, opts EnumerateOptions) []SwapMatch {
	byIdentity := make(map[string]model.User, len(users))
	for _, u := range users {
		byIdentity[u.Identity] = u
	}
	req, ok := byIdentity[requester]
	if !ok {
		return []SwapMatch{}
	}

	byOwner := make(map[string][]model.Item)
	for _, it := range items {
		byOwner[it.OwnerIdentity] = append(byOwner[it.OwnerIdentity], it)
	}

	ownItems := byOwner[requester]
	matches := []SwapMatch{}

	for _, other := range users {
		if other.Identity == requester {
			continue
		}
		for _, own := range ownItems {
			for _, candidate := range byOwner[other.Identity] {
				if candidate.OwnerIdentity == own.OwnerIdentity {
					continue
				}
				if opts.UseCategory && categoriesConflict(own, candidate, classifier) {
					continue
				}
				// Hard cutoff in tolerance mode, independent of the
				// scorer's own tolerance-based score.
				if opts.PriceMode == PriceModeTolerance &&
					math.Abs(candidate.Price-own.Price) > opts.PriceTolerance {
					continue
				}

				scoreFrom := Score(req, candidate, own, locate, w, opts.Options)
				scoreTo := Score(other, own, candidate, locate, w, opts.Options)

				matches = append(matches, SwapMatch{
					OwnItem:       own,
					CandidateItem: candidate,
					ScoreFrom:     round3(scoreFrom),
					ScoreTo:       round3(scoreTo),
					MatchScore:    round3((scoreFrom + scoreTo) / 2),
				})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

// categoriesConflict resolves both items' categories (stored label first,
// classifier fallback) and reports whether both resolved and differ.
func categoriesConflict(a, b model.Item, classifier classify.Classifier) bool {
	ca := itemCategory(a, classifier)
	cb := itemCategory(b, classifier)
	return ca != "" && cb != "" && ca != cb
}

func itemCategory(it model.Item, classifier classify.Classifier) string {
	if it.Category != "" {
		return it.Category
	}
	if classifier == nil {
		return ""
	}
	return classifier(classify.ItemText(it.Title, it.Tags))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
