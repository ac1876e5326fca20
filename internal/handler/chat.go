package handler

import (
	"encoding/json"
	"net/http"

	"barterhub-api/internal/service"
	"barterhub-api/pkg/apierror"
	"barterhub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ChatHandler handles negotiation chat HTTP requests.
type ChatHandler struct {
	negotiationService *service.NegotiationService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(negotiationService *service.NegotiationService) *ChatHandler {
	return &ChatHandler{negotiationService: negotiationService}
}

// List handles GET /api/v1/chats?user=identity
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("user")
	if identity == "" {
		response.Error(w, apierror.BadRequest("user is required"))
		return
	}

	summaries, err := h.negotiationService.ListChats(r.Context(), identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, summaries)
}

// Messages handles GET /api/v1/chats/{id}/messages
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chat, messages, err := h.negotiationService.ChatMessages(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"chat_id":            chat.ID,
		"closed":             chat.Closed,
		"done_confirmations": chat.DoneConfirmations,
		"messages":           messages,
	})
}

type postMessageRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// PostMessage handles POST /api/v1/chats/{id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if req.Sender == "" || req.Text == "" {
		response.Error(w, apierror.ValidationError("sender and text are required"))
		return
	}

	if err := h.negotiationService.PostMessage(r.Context(), id, req.Sender, req.Text); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"chat_id": id,
		"status":  "sent",
	})
}

type confirmDoneRequest struct {
	Identity string `json:"identity"`
}

// ConfirmDone handles POST /api/v1/chats/{id}/done
func (h *ChatHandler) ConfirmDone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req confirmDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	if req.Identity == "" {
		response.Error(w, apierror.ValidationError("identity is required"))
		return
	}

	chat, err := h.negotiationService.ConfirmDone(r.Context(), id, req.Identity)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"chat_id":            chat.ID,
		"closed":             chat.Closed,
		"closed_at":          chat.ClosedAt,
		"done_confirmations": chat.DoneConfirmations,
	})
}
