package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"math/rand"
	"strings"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/store"

	"github.com/google/uuid"
)

// ErrQuotationNotFound is returned when a quotation does not exist for the user.
var ErrQuotationNotFound = errors.New("quotation not found")

const quotationSystemPrompt = `You are preparing a priced quotation for an IT services company.
Given a business description and client details, produce an itemized quotation:
list each service with a short description and a price line, then a total.
Plain text only, sections separated by blank lines.`

// QuotationService generates priced quotations, persists them, and
// renders the printable document.
type QuotationService struct {
	gen            TextGenerator
	store          store.Store
	policy         GenerationPolicy
	companyName    string
	companyTagline string
}

// NewQuotationService creates a new QuotationService.
func NewQuotationService(gen TextGenerator, s store.Store, policy GenerationPolicy, companyName, companyTagline string) *QuotationService {
	return &QuotationService{
		gen:            gen,
		store:          s,
		policy:         policy,
		companyName:    companyName,
		companyTagline: companyTagline,
	}
}

// Generate produces a quotation for the business and persists the
// record {business, quotation, client details, timestamp} for the user.
func (s *QuotationService) Generate(ctx context.Context, userID uuid.UUID, business string, details models.ClientDetails) (*models.QuotationResponse, error) {
	business = strings.TrimSpace(business)
	if business == "" {
		return nil, fmt.Errorf("%w: business description cannot be empty", ErrValidation)
	}

	userPrompt := fmt.Sprintf(
		"Business description:\n%s\n\nClient: %s\nCompany: %s\n\nQuotation:",
		business, details.ClientName, details.CompanyName,
	)
	raw, err := generateWithRetry(ctx, s.gen, s.policy, quotationSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	q, err := s.store.CreateQuotation(ctx, store.CreateQuotationParams{
		ID:            uuid.New(),
		UserID:        userID,
		Business:      business,
		RawContent:    raw,
		ClientDetails: details,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist quotation: %w", err)
	}

	resp := mapQuotation(*q)
	return &resp, nil
}

// Get retrieves one quotation scoped to its owner.
func (s *QuotationService) Get(ctx context.Context, userID, quotationID uuid.UUID) (*models.QuotationResponse, error) {
	q, err := s.store.GetQuotationByID(ctx, quotationID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrQuotationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	resp := mapQuotation(*q)
	return &resp, nil
}

// List returns the user's quotation history, optionally only accepted
// records.
func (s *QuotationService) List(ctx context.Context, userID uuid.UUID, acceptedOnly bool) (*models.ListQuotationsResponse, error) {
	qs, err := s.store.ListQuotationsByUser(ctx, userID, acceptedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	out := make([]models.QuotationResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, mapQuotation(q))
	}
	return &models.ListQuotationsResponse{Quotations: out}, nil
}

// Accept marks a quotation accepted and stamps the acceptance time.
func (s *QuotationService) Accept(ctx context.Context, userID, quotationID uuid.UUID) error {
	err := s.store.AcceptQuotation(ctx, quotationID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrQuotationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to accept quotation: %w", err)
	}
	return nil
}

// printableTemplate is the downloadable quotation document. Kept close
// to the layout clients already receive by email.
var printableTemplate = template.Must(template.New("quotation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Quotation</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 0; padding: 20px; }
    .header { background-color: #0066cc; color: white; padding: 20px; }
    .company-name { font-size: 24px; margin-bottom: 5px; }
    .quote-info { display: flex; justify-content: space-between; }
    .client-info { background-color: #0066cc; color: white; padding: 20px; margin-top: 20px; }
    .services { margin-top: 20px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    .total { font-weight: bold; }
    .footer { margin-top: 30px; font-size: 12px; text-align: center; }
  </style>
</head>
<body>
  <div class="header">
    <div class="company-name">{{.CompanyName}}</div>
    <div>{{.CompanyTagline}}</div>
    <div class="quote-info">
      <div>Quote No. {{.QuoteNumber}}</div>
      <div>Date: {{.Date}}</div>
    </div>
  </div>
  <div class="client-info">
    <h2>Client Information</h2>
    <p>Client Name: {{.Details.ClientName}}</p>
    <p>Company Name: {{.Details.CompanyName}}</p>
    <p>Address: {{.Details.Address}}</p>
    <p>Phone Number: {{.Details.PhoneNumber}}</p>
    <p>Email: {{.Details.Email}}</p>
  </div>
  <div class="services">
    <h2>Quotation Details</h2>
    {{.Content}}
  </div>
  <div class="footer">
    <p>This quotation is valid for 30 days from the date of issue.</p>
    <p>Authorized Signature: _______________________</p>
  </div>
</body>
</html>
`))

// RenderPrintable formats a quotation as a standalone HTML document.
// Pure formatting, no network or store access.
func (s *QuotationService) RenderPrintable(quotation *models.QuotationResponse) (string, error) {
	content := make([]template.HTML, 0)
	for _, line := range strings.Split(template.HTMLEscapeString(quotation.RawContent), "\n") {
		content = append(content, template.HTML(line+"<br>"))
	}

	data := struct {
		CompanyName    string
		CompanyTagline string
		QuoteNumber    string
		Date           string
		Details        models.ClientDetails
		Content        template.HTML
	}{
		CompanyName:    s.companyName,
		CompanyTagline: s.companyTagline,
		QuoteNumber:    fmt.Sprintf("CEH-%04d", 1000+rand.Intn(9000)),
		Date:           quotation.CreatedAt.Format("02/01/2006"),
		Details:        quotation.ClientDetails,
		Content:        joinHTML(content),
	}

	var buf bytes.Buffer
	if err := printableTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render quotation document: %w", err)
	}
	return buf.String(), nil
}

func joinHTML(parts []template.HTML) template.HTML {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return template.HTML(b.String())
}

func mapQuotation(q models.Quotation) models.QuotationResponse {
	return models.QuotationResponse{
		ID:            q.ID,
		Business:      q.Business,
		RawContent:    q.RawContent,
		ClientDetails: q.ClientDetails,
		Accepted:      q.Accepted,
		AcceptedAt:    q.AcceptedAt,
		CreatedAt:     q.CreatedAt,
	}
}
