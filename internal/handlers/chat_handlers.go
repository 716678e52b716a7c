package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"proposaldesk-backend/internal/auth"
	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/realtime"
	"proposaldesk-backend/internal/services"
	"proposaldesk-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatService defines the interface expected from the chat service.
type ChatService interface {
	Send(ctx context.Context, sender models.Identity, conversationID uuid.UUID, text string) (*models.Message, error)
	Messages(ctx context.Context, requester models.Identity, conversationID uuid.UUID) ([]models.MessageResponse, error)
	Subscribe(ctx context.Context, requester models.Identity, conversationID uuid.UUID) (*realtime.MessageSubscription, error)
	ListConversations(ctx context.Context, requester models.Identity) ([]models.ConversationSummary, error)
	SubscribeRoster(ctx context.Context, requester models.Identity) (*realtime.RosterSubscription, error)
}

type ChatHandler struct {
	chatService ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{chatService: svc}
}

// HandleListConversations handles GET /v1/conversations (support only).
func (h *ChatHandler) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summaries, err := h.chatService.ListConversations(r.Context(), identity)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			httputil.RespondError(w, http.StatusForbidden, "Support role required") // 403
			return
		}
		log.Printf("Listing conversations failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ListConversationsResponse{Conversations: summaries})
}

// HandleGetConversationMessages handles GET /v1/conversations/{conversationID}/messages.
func (h *ChatHandler) HandleGetConversationMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	h.respondMessages(w, r, identity, conversationID)
}

// HandleSendToConversation handles POST /v1/conversations/{conversationID}/messages.
func (h *ChatHandler) HandleSendToConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	h.send(w, r, identity, conversationID)
}

// HandleGetMyMessages handles GET /v1/messages: the client's own thread.
func (h *ChatHandler) HandleGetMyMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.respondMessages(w, r, identity, uuid.Nil)
}

// HandleSendMyMessage handles POST /v1/messages: send to the client's
// own thread, creating it on first message.
func (h *ChatHandler) HandleSendMyMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.send(w, r, identity, uuid.Nil)
}

func (h *ChatHandler) respondMessages(w http.ResponseWriter, r *http.Request, identity models.Identity, conversationID uuid.UUID) {
	msgs, err := h.chatService.Messages(r.Context(), identity, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoConversation):
			if identity.Role == models.RoleSupport {
				// Support named a conversation that does not exist.
				httputil.RespondError(w, http.StatusNotFound, err.Error()) // 404
				return
			}
			// A client thread that was never started is an empty list,
			// not an error.
			httputil.RespondJSON(w, http.StatusOK, []models.MessageResponse{})
		case errors.Is(err, services.ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, err.Error()) // 403
		default:
			log.Printf("Fetching messages failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request, identity models.Identity, conversationID uuid.UUID) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	msg, err := h.chatService.Send(r.Context(), identity, conversationID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		case errors.Is(err, services.ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, err.Error()) // 403
		case errors.Is(err, services.ErrNoConversation):
			httputil.RespondError(w, http.StatusNotFound, err.Error()) // 404
		default:
			log.Printf("Sending message failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.MessageResponse{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		SenderEmail: msg.SenderEmail,
		SenderRole:  msg.SenderRole,
		Text:        msg.Text,
		Timestamp:   msg.CreatedAt,
	}) // 201 Created
}
