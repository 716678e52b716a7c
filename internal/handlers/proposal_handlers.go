package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/services"
	"proposaldesk-backend/pkg/httputil"
)

// ProposalService defines the interface expected from the proposal generator.
type ProposalService interface {
	Generate(ctx context.Context, business string) (*models.ProposalResponse, error)
}

type ProposalHandler struct {
	proposalService ProposalService
}

func NewProposalHandler(svc ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: svc}
}

// HandleGenerateProposal handles the POST /v1/proposals request.
func (h *ProposalHandler) HandleGenerateProposal(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	proposal, err := h.proposalService.Generate(r.Context(), req.Business)
	if err != nil {
		log.Printf("Proposal generation failed: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		case errors.Is(err, services.ErrGenerationFailed):
			// The backend was unreachable or timed out; the client may retry.
			httputil.RespondError(w, http.StatusBadGateway, "Proposal generation is temporarily unavailable") // 502
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Proposal generation failed due to an internal error") // 500
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, proposal)
}
