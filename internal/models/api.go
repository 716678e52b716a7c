package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries the ID token obtained from Google sign-in.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// GenerateProposalRequest defines the body for proposal generation.
type GenerateProposalRequest struct {
	Business string `json:"business"`
}

// GenerateQuotationRequest defines the body for quotation generation.
type GenerateQuotationRequest struct {
	Business      string        `json:"business"`
	ClientDetails ClientDetails `json:"client_details"`
}

// SendMessageRequest defines the body for posting a chat message.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// --- Response Structs ---

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProposalResponse carries generated proposal prose. Sections is a
// display aid derived from RawContent; the generator itself makes no
// structural promise about the text.
type ProposalResponse struct {
	RawContent string            `json:"raw_content"`
	Sections   []ProposalSection `json:"sections"`
}

// ProposalSection is one blank-line-delimited block of a proposal,
// tokenized into header/bullet/paragraph lines.
type ProposalSection struct {
	Header     string   `json:"header,omitempty"`
	Bullets    []string `json:"bullets,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty"`
}

// QuotationResponse defines the data returned for a quotation.
type QuotationResponse struct {
	ID            uuid.UUID     `json:"id"`
	Business      string        `json:"business"`
	RawContent    string        `json:"raw_content"`
	ClientDetails ClientDetails `json:"client_details"`
	Accepted      bool          `json:"accepted"`
	AcceptedAt    *time.Time    `json:"accepted_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ListQuotationsResponse wraps the quotation history list.
type ListQuotationsResponse struct {
	Quotations []QuotationResponse `json:"quotations"`
}

// MessageResponse defines the data returned for a chat message.
type MessageResponse struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	SenderEmail string    `json:"sender_email"`
	SenderRole  Role      `json:"sender_role"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationSummary is one row of the support-side conversation list:
// the thread identity plus its most recent message, if any.
type ConversationSummary struct {
	ID               uuid.UUID        `json:"id"`
	ParticipantID    uuid.UUID        `json:"participant_id"`
	ParticipantEmail string           `json:"participant_email"`
	LastMessage      *MessageResponse `json:"last_message,omitempty"`
}

// ListConversationsResponse wraps the conversation list.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}
