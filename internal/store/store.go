package store

import (
	"context"
	"errors"

	"proposaldesk-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateMessageParams contains parameters for appending a message to a
// conversation. The store assigns the timestamp and sequence number so
// ordering is decided by one writer, not by client clocks.
type CreateMessageParams struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	SenderEmail    string
	SenderRole     models.Role
	Text           string
}

// CreateQuotationParams contains parameters for persisting a generated quotation.
type CreateQuotationParams struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Business      string
	RawContent    string
	ClientDetails models.ClientDetails
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Conversation operations. GetOrCreateConversation is the implicit
	// creation path: a client's thread comes into existence with its
	// first message and is never deleted.
	GetOrCreateConversation(ctx context.Context, participantID uuid.UUID, participantEmail string) (*models.Conversation, error)
	GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetConversationByParticipant(ctx context.Context, participantID uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context) ([]models.Conversation, error)

	// Message operations. ListMessages returns messages ordered by
	// (created_at, seq) ascending.
	CreateMessage(ctx context.Context, arg CreateMessageParams) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	GetLastMessage(ctx context.Context, conversationID uuid.UUID) (*models.Message, error)

	// Quotation operations
	CreateQuotation(ctx context.Context, arg CreateQuotationParams) (*models.Quotation, error)
	GetQuotationByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Quotation, error)
	ListQuotationsByUser(ctx context.Context, userID uuid.UUID, acceptedOnly bool) ([]models.Quotation, error)
	AcceptQuotation(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}
