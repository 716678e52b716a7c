package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"proposaldesk-backend/internal/credstore"
	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
)

// fakeStore is an in-memory store.Store for service tests. ListMessages
// returns messages in insertion order, NOT sorted, so tests exercise
// the service-side re-sort.
type fakeStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID][]models.Message
	quotations    map[uuid.UUID]*models.Quotation
	seq           int64
	now           func() time.Time
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uuid.UUID]*models.User),
		conversations: make(map[uuid.UUID]*models.Conversation),
		messages:      make(map[uuid.UUID][]models.Message),
		quotations:    make(map[uuid.UUID]*models.Quotation),
		now:           time.Now,
	}
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	copied.CreatedAt = f.now()
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) GetOrCreateConversation(_ context.Context, participantID uuid.UUID, participantEmail string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversations {
		if c.ParticipantID == participantID {
			copied := *c
			return &copied, nil
		}
	}
	c := &models.Conversation{
		ID:               uuid.New(),
		ParticipantID:    participantID,
		ParticipantEmail: participantEmail,
		CreatedAt:        f.now(),
	}
	f.conversations[c.ID] = c
	copied := *c
	return &copied, nil
}

func (f *fakeStore) GetConversationByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) GetConversationByParticipant(_ context.Context, participantID uuid.UUID) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversations {
		if c.ParticipantID == participantID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListConversations(_ context.Context) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Conversation, 0, len(f.conversations))
	for _, c := range f.conversations {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	msg := models.Message{
		ID:             arg.ID,
		ConversationID: arg.ConversationID,
		SenderID:       arg.SenderID,
		SenderEmail:    arg.SenderEmail,
		SenderRole:     arg.SenderRole,
		Text:           arg.Text,
		Seq:            f.seq,
		CreatedAt:      f.now(),
	}
	f.messages[arg.ConversationID] = append(f.messages[arg.ConversationID], msg)
	return &msg, nil
}

func (f *fakeStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[conversationID]...), nil
}

func (f *fakeStore) GetLastMessage(_ context.Context, conversationID uuid.UUID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	if len(msgs) == 0 {
		return nil, store.ErrNotFound
	}
	last := msgs[0]
	for _, m := range msgs[1:] {
		if m.CreatedAt.After(last.CreatedAt) ||
			(m.CreatedAt.Equal(last.CreatedAt) && m.Seq > last.Seq) {
			last = m
		}
	}
	return &last, nil
}

// seedMessage appends a pre-built message, bypassing timestamp and seq
// assignment. Used to simulate out-of-order store contents.
func (f *fakeStore) seedMessage(msg models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], msg)
}

func (f *fakeStore) CreateQuotation(_ context.Context, arg store.CreateQuotationParams) (*models.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := models.Quotation{
		ID:            arg.ID,
		UserID:        arg.UserID,
		Business:      arg.Business,
		RawContent:    arg.RawContent,
		ClientDetails: arg.ClientDetails,
		CreatedAt:     f.now(),
	}
	f.quotations[q.ID] = &q
	copied := q
	return &copied, nil
}

func (f *fakeStore) GetQuotationByID(_ context.Context, id, userID uuid.UUID) (*models.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotations[id]
	if !ok || q.UserID != userID {
		return nil, store.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (f *fakeStore) ListQuotationsByUser(_ context.Context, userID uuid.UUID, acceptedOnly bool) ([]models.Quotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Quotation
	for _, q := range f.quotations {
		if q.UserID != userID {
			continue
		}
		if acceptedOnly && !q.Accepted {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeStore) AcceptQuotation(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotations[id]
	if !ok || q.UserID != userID {
		return store.ErrNotFound
	}
	now := f.now()
	q.Accepted = true
	q.AcceptedAt = &now
	return nil
}

// fakeGen is a scripted TextGenerator. Each call consumes the next
// result; the last one repeats.
type fakeGen struct {
	mu      sync.Mutex
	calls   int
	results []genResult
}

type genResult struct {
	content string
	err     error
}

func (g *fakeGen) GenerateWithSystem(_ context.Context, _, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.calls
	if idx >= len(g.results) {
		idx = len(g.results) - 1
	}
	g.calls++
	r := g.results[idx]
	return r.content, r.err
}

func (g *fakeGen) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func openTestCredStore(t *testing.T) *credstore.Store {
	t.Helper()
	creds, err := credstore.Open(filepath.Join(t.TempDir(), "creds.bolt"), nil)
	if err != nil {
		t.Fatalf("credstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = creds.Close() })
	return creds
}

func testPolicy() GenerationPolicy {
	return GenerationPolicy{Timeout: time.Second, Retries: 2}
}
