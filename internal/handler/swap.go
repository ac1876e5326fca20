package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"barterhub-api/internal/match"
	"barterhub-api/internal/service"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/response"
)

// SwapHandler handles swap recommendation HTTP requests.
type SwapHandler struct {
	swapService *service.SwapService
}

// NewSwapHandler creates a new swap handler.
func NewSwapHandler(swapService *service.SwapService) *SwapHandler {
	return &SwapHandler{swapService: swapService}
}

// Recommend handles GET /api/v1/swaps/recommend
//
// Query parameters: user (required), wPrice, wDistance, wRating,
// wDamage (weight fractions; all four absent means equal weights),
// priceMode (diff|interval|tolerance), priceTolerance, useCategory.
func (h *SwapHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	requester := q.Get("user")
	if requester == "" {
		response.Error(w, apierror.BadRequest("user is required"))
		return
	}

	weights, err := parseWeights(q)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	priceMode, err := match.ParsePriceMode(q.Get("priceMode"))
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	tolerance, err := parseFloat(q, "priceTolerance", 0)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}
	if tolerance < 0 {
		response.Error(w, apierror.BadRequest("priceTolerance must not be negative"))
		return
	}

	useCategory := false
	if v := q.Get("useCategory"); v != "" {
		useCategory, err = strconv.ParseBool(v)
		if err != nil {
			response.Error(w, apierror.BadRequest("useCategory must be a boolean"))
			return
		}
	}

	matches, err := h.swapService.Recommend(r.Context(), service.RecommendParams{
		Requester:      requester,
		Weights:        weights,
		PriceMode:      priceMode,
		PriceTolerance: tolerance,
		UseCategory:    useCategory,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, matches)
}

// parseWeights reads the four weight parameters. When none is supplied
// the components weigh equally; a partial set leaves the rest at zero.
func parseWeights(q url.Values) (match.Weights, error) {
	supplied := q.Has("wPrice") || q.Has("wDistance") || q.Has("wRating") || q.Has("wDamage")
	if !supplied {
		return match.Weights{Damage: 0.25, Rating: 0.25, Price: 0.25, Distance: 0.25}, nil
	}

	var w match.Weights
	var err error
	if w.Price, err = parseFloat(q, "wPrice", 0); err != nil {
		return w, err
	}
	if w.Distance, err = parseFloat(q, "wDistance", 0); err != nil {
		return w, err
	}
	if w.Rating, err = parseFloat(q, "wRating", 0); err != nil {
		return w, err
	}
	if w.Damage, err = parseFloat(q, "wDamage", 0); err != nil {
		return w, err
	}
	if w.Price < 0 || w.Distance < 0 || w.Rating < 0 || w.Damage < 0 {
		return w, &paramError{"weights must not be negative"}
	}
	return w, nil
}

func parseFloat(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &paramError{name + " must be a number"}
	}
	return f, nil
}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }
