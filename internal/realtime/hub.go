package realtime

import (
	"sync"

	"proposaldesk-backend/internal/models"

	"github.com/google/uuid"
)

// Hub fans out chat state to live subscribers. Each message emission is
// the full ordered snapshot of one conversation, not a delta; each
// roster emission is the current conversation list. Snapshots coalesce:
// a slow consumer sees the latest state, never a backlog of stale ones.
type Hub struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]map[uuid.UUID]*MessageSubscription // conversationID -> subID -> sub
	rosters  map[uuid.UUID]*RosterSubscription                // subID -> sub
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		messages: make(map[uuid.UUID]map[uuid.UUID]*MessageSubscription),
		rosters:  make(map[uuid.UUID]*RosterSubscription),
	}
}

// MessageSubscription is a live feed of one conversation. Cancel is
// mandatory on teardown; after Cancel the channel is closed.
type MessageSubscription struct {
	C <-chan []models.MessageResponse

	id   uuid.UUID
	ch   chan []models.MessageResponse
	hub  *Hub
	conv uuid.UUID
	once sync.Once
}

// Deliver pushes a snapshot to this subscription only. Used for the
// initial state after subscribing; a broadcast would overwrite fresher
// snapshots sitting in other subscribers' buffers.
func (s *MessageSubscription) Deliver(snapshot []models.MessageResponse) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	if room := s.hub.messages[s.conv]; room != nil && room[s.id] == s {
		replace(s.ch, snapshot)
	}
}

// Cancel detaches the subscription and closes its channel. Safe to call
// more than once.
func (s *MessageSubscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if room := s.hub.messages[s.conv]; room != nil {
			delete(room, s.id)
			if len(room) == 0 {
				delete(s.hub.messages, s.conv)
			}
		}
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// RosterSubscription is a live feed of conversation summaries for the
// support listing view.
type RosterSubscription struct {
	C <-chan []models.ConversationSummary

	id   uuid.UUID
	ch   chan []models.ConversationSummary
	hub  *Hub
	once sync.Once
}

// Deliver pushes a roster snapshot to this subscription only.
func (s *RosterSubscription) Deliver(snapshot []models.ConversationSummary) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	if s.hub.rosters[s.id] == s {
		replace(s.ch, snapshot)
	}
}

// Cancel detaches the subscription and closes its channel.
func (s *RosterSubscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.rosters, s.id)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// SubscribeMessages registers a live feed for one conversation.
func (h *Hub) SubscribeMessages(conversationID uuid.UUID) *MessageSubscription {
	ch := make(chan []models.MessageResponse, 1)
	sub := &MessageSubscription{
		C:    ch,
		id:   uuid.New(),
		ch:   ch,
		hub:  h,
		conv: conversationID,
	}

	h.mu.Lock()
	room := h.messages[conversationID]
	if room == nil {
		room = make(map[uuid.UUID]*MessageSubscription)
		h.messages[conversationID] = room
	}
	room[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// SubscribeRoster registers a live feed of conversation summaries.
func (h *Hub) SubscribeRoster() *RosterSubscription {
	ch := make(chan []models.ConversationSummary, 1)
	sub := &RosterSubscription{
		C:   ch,
		id:  uuid.New(),
		ch:  ch,
		hub: h,
	}

	h.mu.Lock()
	h.rosters[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// PublishMessages delivers a conversation snapshot to its subscribers.
func (h *Hub) PublishMessages(conversationID uuid.UUID, snapshot []models.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.messages[conversationID] {
		replace(sub.ch, snapshot)
	}
}

// PublishRoster delivers the conversation list to roster subscribers.
func (h *Hub) PublishRoster(snapshot []models.ConversationSummary) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.rosters {
		replace(sub.ch, snapshot)
	}
}

// HasRosterSubscribers reports whether anyone is watching the listing.
// Lets callers skip building roster snapshots nobody would receive.
func (h *Hub) HasRosterSubscribers() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rosters) > 0
}

// replace performs a coalescing send on a 1-buffered channel: if the
// consumer has not drained the previous snapshot, it is dropped in
// favor of the newer one.
func replace[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
