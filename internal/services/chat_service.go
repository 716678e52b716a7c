package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/realtime"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
)

// Custom errors for chat service
var (
	ErrEmptyMessage   = errors.New("message text cannot be empty")
	ErrForbidden      = errors.New("not a participant of this conversation")
	ErrNoConversation = errors.New("conversation not found")
)

// ChatService maintains the live message feed between clients and
// support. Messages are append-only and ordered by the store's
// (timestamp, seq); every snapshot handed to subscribers is re-sorted
// here because delivery order is not guaranteed to match write order.
type ChatService struct {
	store store.Store
	hub   *realtime.Hub
}

// NewChatService creates a new ChatService.
func NewChatService(s store.Store, hub *realtime.Hub) *ChatService {
	return &ChatService{
		store: s,
		hub:   hub,
	}
}

// Send validates and appends a message, then pushes fresh snapshots to
// all live subscribers. For clients the conversation is their own,
// created implicitly on first send; conversationID is only honored for
// the support role.
func (s *ChatService) Send(ctx context.Context, sender models.Identity, conversationID uuid.UUID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.resolveConversation(ctx, sender, conversationID, true)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.CreateMessage(ctx, store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       sender.UserID,
		SenderEmail:    sender.Email,
		SenderRole:     sender.Role,
		Text:           text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.fanOut(ctx, conv.ID)
	return msg, nil
}

// Messages returns the full ordered message list of a conversation.
func (s *ChatService) Messages(ctx context.Context, requester models.Identity, conversationID uuid.UUID) ([]models.MessageResponse, error) {
	conv, err := s.resolveConversation(ctx, requester, conversationID, false)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, conv.ID)
}

// Subscribe opens a live feed for a conversation. Each emission is the
// complete ordered message list. The current state is emitted
// immediately; the caller must Cancel the subscription on teardown.
func (s *ChatService) Subscribe(ctx context.Context, requester models.Identity, conversationID uuid.UUID) (*realtime.MessageSubscription, error) {
	conv, err := s.resolveConversation(ctx, requester, conversationID, requester.Role == models.RoleClient)
	if err != nil {
		return nil, err
	}

	sub := s.hub.SubscribeMessages(conv.ID)

	snap, err := s.snapshot(ctx, conv.ID)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	sub.Deliver(snap)

	return sub, nil
}

// ListConversations returns summaries of every conversation, for the
// support listing view.
func (s *ChatService) ListConversations(ctx context.Context, requester models.Identity) ([]models.ConversationSummary, error) {
	if requester.Role != models.RoleSupport {
		return nil, ErrForbidden
	}
	return s.roster(ctx)
}

// SubscribeRoster opens a live feed of conversation summaries, updated
// whenever a message arrives anywhere. Support role only.
func (s *ChatService) SubscribeRoster(ctx context.Context, requester models.Identity) (*realtime.RosterSubscription, error) {
	if requester.Role != models.RoleSupport {
		return nil, ErrForbidden
	}

	sub := s.hub.SubscribeRoster()

	snap, err := s.roster(ctx)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	sub.Deliver(snap)

	return sub, nil
}

// resolveConversation maps a requester onto the conversation it may
// touch. Clients always land on their own thread; support may address
// any existing one. create controls whether a client's missing thread
// is created implicitly.
func (s *ChatService) resolveConversation(ctx context.Context, requester models.Identity, conversationID uuid.UUID, create bool) (*models.Conversation, error) {
	if requester.Role == models.RoleSupport {
		if conversationID == uuid.Nil {
			return nil, ErrNoConversation
		}
		conv, err := s.store.GetConversationByID(ctx, conversationID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoConversation
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get conversation: %w", err)
		}
		return conv, nil
	}

	// Client role: the only reachable conversation is their own. An
	// explicit ID must name that thread; anything else is forbidden,
	// on the write path as much as on the read path.
	if conversationID != uuid.Nil {
		conv, err := s.store.GetConversationByParticipant(ctx, requester.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve conversation: %w", err)
		}
		if conversationID != conv.ID {
			return nil, ErrForbidden
		}
		return conv, nil
	}

	if create {
		conv, err := s.store.GetOrCreateConversation(ctx, requester.UserID, requester.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := s.store.GetConversationByParticipant(ctx, requester.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoConversation
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}
	return conv, nil
}

// snapshot loads and re-sorts the full message list of a conversation.
func (s *ChatService) snapshot(ctx context.Context, conversationID uuid.UUID) ([]models.MessageResponse, error) {
	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// The store orders the query, but concurrently-written messages may
	// still arrive interleaved. Sorting here makes the emission order a
	// guarantee of this service, not a property of the backend.
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	out := make([]models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, mapMessage(m))
	}
	return out, nil
}

// roster builds the conversation summary list.
func (s *ChatService) roster(ctx context.Context) ([]models.ConversationSummary, error) {
	convs, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := models.ConversationSummary{
			ID:               conv.ID,
			ParticipantID:    conv.ParticipantID,
			ParticipantEmail: conv.ParticipantEmail,
		}
		last, err := s.store.GetLastMessage(ctx, conv.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to get last message: %w", err)
		}
		if err == nil {
			resp := mapMessage(*last)
			summary.LastMessage = &resp
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// fanOut pushes updated snapshots after a write. Failures here must not
// fail the send; subscribers fall back to the next emission.
func (s *ChatService) fanOut(ctx context.Context, conversationID uuid.UUID) {
	snap, err := s.snapshot(ctx, conversationID)
	if err != nil {
		log.Printf("WARN [ChatService] fan-out snapshot failed for conversation %s: %v", conversationID, err)
		return
	}
	s.hub.PublishMessages(conversationID, snap)

	if s.hub.HasRosterSubscribers() {
		roster, err := s.roster(ctx)
		if err != nil {
			log.Printf("WARN [ChatService] fan-out roster failed: %v", err)
			return
		}
		s.hub.PublishRoster(roster)
	}
}

func mapMessage(m models.Message) models.MessageResponse {
	return models.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderEmail: m.SenderEmail,
		SenderRole:  m.SenderRole,
		Text:        m.Text,
		Timestamp:   m.CreatedAt,
	}
}
