package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Quotation Methods ---

const createQuotation = `
INSERT INTO quotations (id, user_id, business, raw_content, client_details)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, business, raw_content, client_details, accepted, accepted_at, created_at;
`

// CreateQuotation persists a generated quotation record.
func (s *PostgresStore) CreateQuotation(ctx context.Context, arg store.CreateQuotationParams) (*models.Quotation, error) {
	detailsJSON, err := json.Marshal(arg.ClientDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client details: %w", err)
	}

	q := &models.Quotation{}
	var detailsRaw []byte
	err = s.db.QueryRow(ctx, createQuotation,
		arg.ID,
		arg.UserID,
		arg.Business,
		arg.RawContent,
		detailsJSON,
	).Scan(
		&q.ID,
		&q.UserID,
		&q.Business,
		&q.RawContent,
		&detailsRaw,
		&q.Accepted,
		&q.AcceptedAt,
		&q.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateQuotation: user %s: %v", arg.UserID, err)
		return nil, fmt.Errorf("database error creating quotation: %w", err)
	}
	if err := json.Unmarshal(detailsRaw, &q.ClientDetails); err != nil {
		return nil, fmt.Errorf("failed to parse client details: %w", err)
	}
	return q, nil
}

// GetQuotationByID retrieves a quotation scoped to its owner.
// Returns store.ErrNotFound if it does not exist or belongs to someone else.
func (s *PostgresStore) GetQuotationByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Quotation, error) {
	query := `
		SELECT id, user_id, business, raw_content, client_details, accepted, accepted_at, created_at
		FROM quotations
		WHERE id = $1 AND user_id = $2`

	q := &models.Quotation{}
	var detailsRaw []byte
	err := s.db.QueryRow(ctx, query, id, userID).Scan(
		&q.ID,
		&q.UserID,
		&q.Business,
		&q.RawContent,
		&detailsRaw,
		&q.Accepted,
		&q.AcceptedAt,
		&q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetQuotationByID: %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching quotation: %w", err)
	}
	if err := json.Unmarshal(detailsRaw, &q.ClientDetails); err != nil {
		return nil, fmt.Errorf("failed to parse client details: %w", err)
	}
	return q, nil
}

// ListQuotationsByUser returns the user's quotations, newest first.
// With acceptedOnly it narrows to accepted records (the proposal
// history view).
func (s *PostgresStore) ListQuotationsByUser(ctx context.Context, userID uuid.UUID, acceptedOnly bool) ([]models.Quotation, error) {
	query := `
		SELECT id, user_id, business, raw_content, client_details, accepted, accepted_at, created_at
		FROM quotations
		WHERE user_id = $1`
	if acceptedOnly {
		query += ` AND accepted = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListQuotationsByUser: user %s: %v", userID, err)
		return nil, fmt.Errorf("database error listing quotations: %w", err)
	}
	defer rows.Close()

	var quotations []models.Quotation
	for rows.Next() {
		var q models.Quotation
		var detailsRaw []byte
		if err := rows.Scan(&q.ID, &q.UserID, &q.Business, &q.RawContent, &detailsRaw, &q.Accepted, &q.AcceptedAt, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning quotation: %w", err)
		}
		if err := json.Unmarshal(detailsRaw, &q.ClientDetails); err != nil {
			return nil, fmt.Errorf("failed to parse client details: %w", err)
		}
		quotations = append(quotations, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating quotations: %w", err)
	}
	return quotations, nil
}

// AcceptQuotation marks a quotation accepted and stamps accepted_at.
// Returns store.ErrNotFound when the record does not exist for the user.
func (s *PostgresStore) AcceptQuotation(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `
		UPDATE quotations
		SET accepted = TRUE, accepted_at = NOW()
		WHERE id = $1 AND user_id = $2`

	tag, err := s.db.Exec(ctx, query, id, userID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AcceptQuotation: %s: %v", id, err)
		return fmt.Errorf("database error accepting quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
