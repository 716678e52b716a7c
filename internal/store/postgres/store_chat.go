package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Conversation Methods ---

const getOrCreateConversation = `
INSERT INTO conversations (id, participant_id, participant_email)
VALUES ($1, $2, $3)
ON CONFLICT (participant_id) DO UPDATE SET participant_email = conversations.participant_email
RETURNING id, participant_id, participant_email, created_at;
`

// GetOrCreateConversation returns the participant's conversation,
// creating it if this is their first message. The upsert keeps the
// operation race-free when two sends arrive concurrently.
func (s *PostgresStore) GetOrCreateConversation(ctx context.Context, participantID uuid.UUID, participantEmail string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := s.db.QueryRow(ctx, getOrCreateConversation, uuid.New(), participantID, participantEmail).Scan(
		&conv.ID,
		&conv.ParticipantID,
		&conv.ParticipantEmail,
		&conv.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] GetOrCreateConversation: participant %s: %v", participantID, err)
		return nil, fmt.Errorf("database error getting or creating conversation: %w", err)
	}
	return conv, nil
}

// GetConversationByID retrieves a conversation by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *PostgresStore) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT id, participant_id, participant_email, created_at
		FROM conversations
		WHERE id = $1`

	conv := &models.Conversation{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.ParticipantID,
		&conv.ParticipantEmail,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetConversationByID: %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}
	return conv, nil
}

// GetConversationByParticipant retrieves the conversation owned by the
// given participant. Returns store.ErrNotFound when they have never
// sent a message.
func (s *PostgresStore) GetConversationByParticipant(ctx context.Context, participantID uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT id, participant_id, participant_email, created_at
		FROM conversations
		WHERE participant_id = $1`

	conv := &models.Conversation{}
	err := s.db.QueryRow(ctx, query, participantID).Scan(
		&conv.ID,
		&conv.ParticipantID,
		&conv.ParticipantEmail,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetConversationByParticipant: %s: %v", participantID, err)
		return nil, fmt.Errorf("database error fetching conversation by participant: %w", err)
	}
	return conv, nil
}

// ListConversations returns every conversation, most recently created first.
func (s *PostgresStore) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	query := `
		SELECT id, participant_id, participant_email, created_at
		FROM conversations
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListConversations: %v", err)
		return nil, fmt.Errorf("database error listing conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.ParticipantID, &conv.ParticipantEmail, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating conversations: %w", err)
	}
	return convs, nil
}

// --- Message Methods ---

const createMessage = `
INSERT INTO messages (id, conversation_id, sender_id, sender_email, sender_role, text)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, conversation_id, sender_id, sender_email, sender_role, text, seq, created_at;
`

// CreateMessage appends an immutable message. The database assigns
// created_at (NOW()) and seq (bigserial), so ordering is serialized by
// the single writer regardless of client clocks.
func (s *PostgresStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	msg := &models.Message{}
	err := s.db.QueryRow(ctx, createMessage,
		arg.ID,
		arg.ConversationID,
		arg.SenderID,
		arg.SenderEmail,
		arg.SenderRole,
		arg.Text,
	).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.SenderEmail,
		&msg.SenderRole,
		&msg.Text,
		&msg.Seq,
		&msg.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateMessage: conversation %s: %v", arg.ConversationID, err)
		return nil, fmt.Errorf("database error creating message: %w", err)
	}
	return msg, nil
}

// ListMessages returns all messages of a conversation ordered by
// (created_at, seq) ascending.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, sender_email, sender_role, text, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC`

	rows, err := s.db.Query(ctx, query, conversationID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListMessages: conversation %s: %v", conversationID, err)
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.SenderEmail, &msg.SenderRole, &msg.Text, &msg.Seq, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating messages: %w", err)
	}
	return msgs, nil
}

// GetLastMessage returns the newest message of a conversation, or
// store.ErrNotFound for an empty thread.
func (s *PostgresStore) GetLastMessage(ctx context.Context, conversationID uuid.UUID) (*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, sender_email, sender_role, text, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`

	msg := &models.Message{}
	err := s.db.QueryRow(ctx, query, conversationID).Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.SenderEmail,
		&msg.SenderRole,
		&msg.Text,
		&msg.Seq,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetLastMessage: conversation %s: %v", conversationID, err)
		return nil, fmt.Errorf("database error fetching last message: %w", err)
	}
	return msg, nil
}
