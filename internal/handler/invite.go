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

// InviteHandler handles swap invite HTTP requests.
type InviteHandler struct {
	negotiationService *service.NegotiationService
}

// NewInviteHandler creates a new invite handler.
func NewInviteHandler(negotiationService *service.NegotiationService) *InviteHandler {
	return &InviteHandler{negotiationService: negotiationService}
}

type createInviteRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	FromItem string `json:"from_item_id"`
	ToItem   string `json:"to_item_id"`
}

// Create handles POST /api/v1/invites
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	var details []apierror.FieldError
	for field, value := range map[string]string{
		"from": req.From, "to": req.To,
		"from_item_id": req.FromItem, "to_item_id": req.ToItem,
	} {
		if value == "" {
			details = append(details, apierror.FieldError{Field: field, Message: "required"})
		}
	}
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("missing required fields", details...))
		return
	}

	invite, err := h.negotiationService.CreateInvite(r.Context(), req.From, req.To, req.FromItem, req.ToItem)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, invite)
}

// InviteListResponse groups the invites touching one identity.
type InviteListResponse struct {
	Received []model.Invite `json:"received"`
	Sent     []model.Invite `json:"sent"`
}

// List handles GET /api/v1/invites?user=identity
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("user")
	if identity == "" {
		response.Error(w, apierror.BadRequest("user is required"))
		return
	}

	received, sent, err := h.negotiationService.ListInvites(r.Context(), identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, InviteListResponse{Received: received, Sent: sent})
}

// Accept handles POST /api/v1/invites/{id}/accept
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chatID, err := h.negotiationService.AcceptInvite(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"invite_id": id,
		"chat_id":   chatID,
	})
}

// Reject handles POST /api/v1/invites/{id}/reject
func (h *InviteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.negotiationService.RejectInvite(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"invite_id": id,
		"status":    "rejected",
	})
}
