package handlers

import (
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
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware on the
	// REST surface; mobile clients do not send an Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope is the frame pushed to websocket subscribers. Exactly one
// payload field is set, matching Type.
type wsEnvelope struct {
	Type          string                       `json:"type"` // "messages", "conversations" or "error"
	Messages      []models.MessageResponse     `json:"messages,omitempty"`
	Conversations []models.ConversationSummary `json:"conversations,omitempty"`
	Error         string                       `json:"error,omitempty"`
}

// HandleConversationSocket handles GET /v1/conversations/{conversationID}/ws:
// a live feed of one conversation. Inbound text frames are treated as
// send requests, so the socket is bidirectional.
func (h *ChatHandler) HandleConversationSocket(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}
	h.serveMessageSocket(w, r, conversationID)
}

// HandleMySocket handles GET /v1/messages/ws: the client's own thread.
func (h *ChatHandler) HandleMySocket(w http.ResponseWriter, r *http.Request) {
	h.serveMessageSocket(w, r, uuid.Nil)
}

func (h *ChatHandler) serveMessageSocket(w http.ResponseWriter, r *http.Request, conversationID uuid.UUID) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	// Subscribe before upgrading so authorization failures still get a
	// proper HTTP status.
	sub, err := h.chatService.Subscribe(r.Context(), identity, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			httputil.RespondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrNoConversation):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("Subscribing to conversation failed: %v", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to subscribe")
		}
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	conn := realtime.NewConn(ws)
	conn.Start()
	// The subscription is released whichever loop exits first. Leaking
	// it would keep snapshots flowing to a dead socket.
	defer sub.Cancel()
	defer conn.Close(websocket.CloseNormalClosure, "subscription ended")

	// Reader: inbound frames are send requests; a read error means the
	// peer is gone.
	go func() {
		defer conn.Close(websocket.CloseNormalClosure, "client closed")
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var req models.SendMessageRequest
			if err := json.Unmarshal(data, &req); err != nil {
				h.pushError(conn, "invalid message payload")
				continue
			}
			if _, err := h.chatService.Send(r.Context(), identity, conversationID, req.Text); err != nil {
				h.pushError(conn, err.Error())
			}
		}
	}()

	// Writer: forward snapshots until the subscription or socket dies.
	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(wsEnvelope{Type: "messages", Messages: snap})
			if err != nil {
				log.Printf("Marshaling message snapshot failed: %v", err)
				continue
			}
			if err := conn.Send(payload); err != nil {
				return
			}
		case <-conn.Closed():
			return
		}
	}
}

// HandleRosterSocket handles GET /v1/conversations/ws: the live
// conversation listing for the support role.
func (h *ChatHandler) HandleRosterSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.chatService.SubscribeRoster(r.Context(), identity)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			httputil.RespondError(w, http.StatusForbidden, "Support role required")
			return
		}
		log.Printf("Subscribing to roster failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	conn := realtime.NewConn(ws)
	conn.Start()
	defer sub.Cancel()
	defer conn.Close(websocket.CloseNormalClosure, "subscription ended")

	// Reader only detects disconnect; the roster feed is one-way.
	go func() {
		defer conn.Close(websocket.CloseNormalClosure, "client closed")
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(wsEnvelope{Type: "conversations", Conversations: snap})
			if err != nil {
				log.Printf("Marshaling roster snapshot failed: %v", err)
				continue
			}
			if err := conn.Send(payload); err != nil {
				return
			}
		case <-conn.Closed():
			return
		}
	}
}

func (h *ChatHandler) pushError(conn *realtime.Conn, msg string) {
	payload, err := json.Marshal(wsEnvelope{Type: "error", Error: msg})
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}
