package handler

import (
	"encoding/json"
	"net/http"

	"barterhub-api/internal/model"
	"barterhub-api/internal/service"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user directory HTTP requests.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type registerUserRequest struct {
	DisplayName string          `json:"display_name"`
	Location    *model.Location `json:"location"`
}

// Register handles PUT /api/v1/users/{identity}
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if identity == "" {
		response.Error(w, apierror.BadRequest("identity is required"))
		return
	}

	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	user, err := h.userService.Register(r.Context(), identity, req.DisplayName, req.Location)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, user)
}

// Get handles GET /api/v1/users/{identity}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if identity == "" {
		response.Error(w, apierror.BadRequest("identity is required"))
		return
	}

	user, err := h.userService.Get(r.Context(), identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, user)
}
