package realtime

import (
	"testing"
	"time"

	"proposaldesk-backend/internal/models"

	"github.com/google/uuid"
)

func snapshotOf(texts ...string) []models.MessageResponse {
	out := make([]models.MessageResponse, 0, len(texts))
	for _, text := range texts {
		out = append(out, models.MessageResponse{ID: uuid.New(), Text: text})
	}
	return out
}

func TestPublishMessagesDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	conv := uuid.New()

	sub := hub.SubscribeMessages(conv)
	defer sub.Cancel()

	want := snapshotOf("hello")
	hub.PublishMessages(conv, want)

	select {
	case got := <-sub.C:
		if len(got) != 1 || got[0].Text != "hello" {
			t.Errorf("received %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestPublishMessagesScopedToConversation(t *testing.T) {
	hub := NewHub()

	sub := hub.SubscribeMessages(uuid.New())
	defer sub.Cancel()

	hub.PublishMessages(uuid.New(), snapshotOf("other thread"))

	select {
	case got := <-sub.C:
		t.Errorf("received snapshot for a different conversation: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberSeesLatestSnapshot(t *testing.T) {
	hub := NewHub()
	conv := uuid.New()

	sub := hub.SubscribeMessages(conv)
	defer sub.Cancel()

	// Publish repeatedly without draining. The buffer holds one
	// snapshot; earlier ones are replaced, never queued.
	hub.PublishMessages(conv, snapshotOf("one"))
	hub.PublishMessages(conv, snapshotOf("one", "two"))
	hub.PublishMessages(conv, snapshotOf("one", "two", "three"))

	select {
	case got := <-sub.C:
		if len(got) != 3 {
			t.Errorf("received %d messages, want the latest snapshot of 3", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestCancelClosesChannelAndDetaches(t *testing.T) {
	hub := NewHub()
	conv := uuid.New()

	sub := hub.SubscribeMessages(conv)
	sub.Cancel()
	sub.Cancel() // must be safe to repeat

	if _, ok := <-sub.C; ok {
		t.Error("expected closed channel after Cancel")
	}

	// Publishing after cancel must not panic or deliver.
	hub.PublishMessages(conv, snapshotOf("late"))
}

func TestRosterSubscription(t *testing.T) {
	hub := NewHub()

	if hub.HasRosterSubscribers() {
		t.Error("HasRosterSubscribers = true on empty hub")
	}

	sub := hub.SubscribeRoster()
	if !hub.HasRosterSubscribers() {
		t.Error("HasRosterSubscribers = false after subscribe")
	}

	want := []models.ConversationSummary{{ID: uuid.New(), ParticipantEmail: "client@example.com"}}
	hub.PublishRoster(want)

	select {
	case got := <-sub.C:
		if len(got) != 1 || got[0].ParticipantEmail != "client@example.com" {
			t.Errorf("received %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for roster")
	}

	sub.Cancel()
	if hub.HasRosterSubscribers() {
		t.Error("HasRosterSubscribers = true after cancel")
	}
}

func TestDeliverTargetsOnlyThatSubscription(t *testing.T) {
	hub := NewHub()
	conv := uuid.New()

	existing := hub.SubscribeMessages(conv)
	defer existing.Cancel()

	// The existing subscriber holds a fresh 2-message snapshot.
	hub.PublishMessages(conv, snapshotOf("one", "two"))

	// A newcomer receiving its older initial state must not disturb it.
	newcomer := hub.SubscribeMessages(conv)
	defer newcomer.Cancel()
	newcomer.Deliver(snapshotOf("one"))

	select {
	case got := <-existing.C:
		if len(got) != 2 {
			t.Errorf("existing subscriber got %d messages, want its 2-message snapshot intact", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for existing subscriber's snapshot")
	}

	select {
	case got := <-newcomer.C:
		if len(got) != 1 {
			t.Errorf("newcomer got %d messages, want 1", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for newcomer's snapshot")
	}
}

func TestDeliverAfterCancelIsNoOp(t *testing.T) {
	hub := NewHub()

	msgSub := hub.SubscribeMessages(uuid.New())
	msgSub.Cancel()
	msgSub.Deliver(snapshotOf("late")) // must not panic on the closed channel

	rosterSub := hub.SubscribeRoster()
	rosterSub.Cancel()
	rosterSub.Deliver([]models.ConversationSummary{{ID: uuid.New()}})
}

func TestConcurrentPublishAndCancel(t *testing.T) {
	hub := NewHub()
	conv := uuid.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.PublishMessages(conv, snapshotOf("burst"))
		}
	}()

	for i := 0; i < 20; i++ {
		sub := hub.SubscribeMessages(conv)
		sub.Cancel()
	}
	<-done
}
