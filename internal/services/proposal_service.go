package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"proposaldesk-backend/internal/llm"
	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/prose"
)

// ErrGenerationFailed is returned when the text-generation backend
// could not produce content within the retry budget.
var ErrGenerationFailed = errors.New("text generation failed")

// TextGenerator is the slice of the LLM wrapper the generator services
// need. Kept as an interface so tests can stub the backend.
type TextGenerator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerationPolicy bounds each call to the text-generation backend:
// a per-attempt timeout and a fixed number of retries with backoff.
// Fatal provider errors (bad key, exhausted quota) are never retried.
type GenerationPolicy struct {
	Timeout time.Duration
	Retries int
}

const proposalSystemPrompt = `You are a business consultant writing client-facing documents for an IT services company.
Write a professional business proposal for the described business.
Structure the proposal into sections separated by blank lines. Mark section titles as **Title** and list items with a leading "*".
Cover: an executive summary, the services offered, a delivery approach, and expected outcomes.`

// ProposalService turns a free-text business description into proposal
// prose via the external text-generation backend.
type ProposalService struct {
	gen    TextGenerator
	policy GenerationPolicy
}

// NewProposalService creates a new ProposalService.
func NewProposalService(gen TextGenerator, policy GenerationPolicy) *ProposalService {
	return &ProposalService{gen: gen, policy: policy}
}

// Generate produces a proposal for a non-empty business description.
// The returned sections are a display aid; RawContent is authoritative
// and may be arbitrary prose.
func (s *ProposalService) Generate(ctx context.Context, business string) (*models.ProposalResponse, error) {
	business = strings.TrimSpace(business)
	if business == "" {
		return nil, fmt.Errorf("%w: business description cannot be empty", ErrValidation)
	}

	userPrompt := fmt.Sprintf("Business description:\n%s\n\nProposal:", business)
	raw, err := generateWithRetry(ctx, s.gen, s.policy, proposalSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	return &models.ProposalResponse{
		RawContent: raw,
		Sections:   prose.Tokenize(raw),
	}, nil
}

// generateWithRetry runs one generation request under the policy:
// each attempt gets its own timeout, non-fatal failures are retried
// with doubling backoff, fatal API errors and caller cancellation stop
// immediately.
func generateWithRetry(ctx context.Context, gen TextGenerator, policy GenerationPolicy, systemPrompt, userPrompt string) (string, error) {
	backoff := 250 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= policy.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		raw, err := gen.GenerateWithSystem(attemptCtx, systemPrompt, userPrompt)
		cancel()

		if err == nil {
			if strings.TrimSpace(raw) == "" {
				lastErr = errors.New("backend returned empty content")
				continue
			}
			return raw, nil
		}

		lastErr = err
		if errors.Is(err, llm.ErrFatalAPI) || ctx.Err() != nil {
			break
		}
		log.Printf("WARN [Generator] attempt %d/%d failed: %v", attempt+1, policy.Retries+1, err)
	}

	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}
