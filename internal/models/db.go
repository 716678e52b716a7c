package models

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies an authenticated identity. It is assigned once by the
// auth service at sign-in and travels with the identity from then on;
// nothing downstream re-derives it from the email.
type Role string

const (
	RoleClient  Role = "client"
	RoleSupport Role = "support"
)

// User represents a user in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"` // empty for Google sign-in accounts
	Role           Role      `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Identity is the authenticated principal handed out by the auth
// service and cached in the credential store.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// Conversation is the message thread between one client and support.
// There is exactly one per non-support user, created implicitly on the
// first message and never deleted.
type Conversation struct {
	ID               uuid.UUID `db:"id"`
	ParticipantID    uuid.UUID `db:"participant_id"`
	ParticipantEmail string    `db:"participant_email"`
	CreatedAt        time.Time `db:"created_at"`
}

// Message is an immutable entry in a conversation. Ordering for display
// is (CreatedAt, Seq) ascending; Seq breaks timestamp ties in insertion
// order.
type Message struct {
	ID             uuid.UUID `db:"id"`
	ConversationID uuid.UUID `db:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id"`
	SenderEmail    string    `db:"sender_email"`
	SenderRole     Role      `db:"sender_role"`
	Text           string    `db:"text"`
	Seq            int64     `db:"seq"`
	CreatedAt      time.Time `db:"created_at"`
}

// ClientDetails carries the free-text client fields attached to a
// quotation. All fields are optional and unvalidated.
type ClientDetails struct {
	ClientName  string `json:"client_name"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// Quotation represents a generated quotation persisted for a user.
type Quotation struct {
	ID            uuid.UUID     `db:"id"`
	UserID        uuid.UUID     `db:"user_id"`
	Business      string        `db:"business"`
	RawContent    string        `db:"raw_content"`
	ClientDetails ClientDetails `db:"client_details"` // stored as JSONB
	Accepted      bool          `db:"accepted"`
	AcceptedAt    *time.Time    `db:"accepted_at"`
	CreatedAt     time.Time     `db:"created_at"`
}
