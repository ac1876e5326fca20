package handler

import (
	"encoding/json"
	"net/http"

	"barterhub-api/internal/service"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/response"
)

// ItemHandler handles item catalog HTTP requests.
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

type uploadItemRequest struct {
	Owner     string   `json:"owner"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	Condition int      `json:"condition"`
	Price     float64  `json:"price"`
	Category  string   `json:"category"`
}

// Upload handles POST /api/v1/items
func (h *ItemHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	var details []apierror.FieldError
	if req.Owner == "" {
		details = append(details, apierror.FieldError{Field: "owner", Message: "required"})
	}
	if req.Title == "" {
		details = append(details, apierror.FieldError{Field: "title", Message: "required"})
	}
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("missing required fields", details...))
		return
	}

	item, err := h.itemService.Upload(r.Context(), service.UploadItemInput{
		Owner:     req.Owner,
		Title:     req.Title,
		Tags:      req.Tags,
		Condition: req.Condition,
		Price:     req.Price,
		Category:  req.Category,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, item)
}

// Search handles GET /api/v1/items/search?q=keyword&exclude=identity
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		response.Error(w, apierror.BadRequest("q is required"))
		return
	}

	items, err := h.itemService.Search(r.Context(), keyword, r.URL.Query().Get("exclude"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, items)
}
