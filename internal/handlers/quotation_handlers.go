package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"proposaldesk-backend/internal/auth"
	"proposaldesk-backend/internal/models"
	"proposaldesk-backend/internal/services"
	"proposaldesk-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// QuotationService defines the interface expected from the quotation generator.
type QuotationService interface {
	Generate(ctx context.Context, userID uuid.UUID, business string, details models.ClientDetails) (*models.QuotationResponse, error)
	Get(ctx context.Context, userID, quotationID uuid.UUID) (*models.QuotationResponse, error)
	List(ctx context.Context, userID uuid.UUID, acceptedOnly bool) (*models.ListQuotationsResponse, error)
	Accept(ctx context.Context, userID, quotationID uuid.UUID) error
	RenderPrintable(quotation *models.QuotationResponse) (string, error)
}

// PDFRenderer converts a printable HTML document to PDF bytes and can
// keep a copy under the server's downloads directory.
type PDFRenderer interface {
	Render(html string) ([]byte, error)
	Save(name string, data []byte) (string, error)
}

type QuotationHandler struct {
	quotationService QuotationService
	pdfRenderer      PDFRenderer
}

func NewQuotationHandler(svc QuotationService, renderer PDFRenderer) *QuotationHandler {
	return &QuotationHandler{quotationService: svc, pdfRenderer: renderer}
}

// HandleGenerateQuotation handles the POST /v1/quotations request.
func (h *QuotationHandler) HandleGenerateQuotation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.GenerateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	quotation, err := h.quotationService.Generate(r.Context(), userID, req.Business, req.ClientDetails)
	if err != nil {
		log.Printf("Quotation generation failed for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error()) // 400
		case errors.Is(err, services.ErrGenerationFailed):
			httputil.RespondError(w, http.StatusBadGateway, "Quotation generation is temporarily unavailable") // 502
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Quotation generation failed due to an internal error") // 500
		}
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, quotation) // 201 Created
}

// HandleListQuotations handles the GET /v1/quotations request.
// ?accepted=true narrows the history to accepted records.
func (h *QuotationHandler) HandleListQuotations(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	acceptedOnly := r.URL.Query().Get("accepted") == "true"
	list, err := h.quotationService.List(r.Context(), userID, acceptedOnly)
	if err != nil {
		log.Printf("Listing quotations failed for user %s: %v", userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list quotations")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// HandleGetQuotation handles the GET /v1/quotations/{quotationID} request.
func (h *QuotationHandler) HandleGetQuotation(w http.ResponseWriter, r *http.Request) {
	quotation, ok := h.loadQuotation(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, quotation)
}

// HandleAcceptQuotation handles the POST /v1/quotations/{quotationID}/accept request.
func (h *QuotationHandler) HandleAcceptQuotation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	quotationID, err := uuid.Parse(chi.URLParam(r, "quotationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid quotation ID")
		return
	}

	if err := h.quotationService.Accept(r.Context(), userID, quotationID); err != nil {
		if errors.Is(err, services.ErrQuotationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error()) // 404
			return
		}
		log.Printf("Accepting quotation %s failed for user %s: %v", quotationID, userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to accept quotation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetQuotationDocument handles GET /v1/quotations/{quotationID}/document,
// returning the printable HTML document.
func (h *QuotationHandler) HandleGetQuotationDocument(w http.ResponseWriter, r *http.Request) {
	quotation, ok := h.loadQuotation(w, r)
	if !ok {
		return
	}

	html, err := h.quotationService.RenderPrintable(quotation)
	if err != nil {
		log.Printf("Rendering quotation document %s failed: %v", quotation.ID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to render quotation document")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// HandleDownloadQuotationPDF handles GET /v1/quotations/{quotationID}/document.pdf,
// rendering the printable document to a PDF byte stream.
func (h *QuotationHandler) HandleDownloadQuotationPDF(w http.ResponseWriter, r *http.Request) {
	quotation, ok := h.loadQuotation(w, r)
	if !ok {
		return
	}

	html, err := h.quotationService.RenderPrintable(quotation)
	if err != nil {
		log.Printf("Rendering quotation document %s failed: %v", quotation.ID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to render quotation document")
		return
	}

	pdfBytes, err := h.pdfRenderer.Render(html)
	if err != nil {
		log.Printf("Rendering quotation PDF %s failed: %v", quotation.ID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to render quotation PDF")
		return
	}

	filename := fmt.Sprintf("quotation_%s.pdf", quotation.ClientDetails.CompanyName)

	// ?save=true keeps a server-side copy under the downloads
	// directory. A failed save never fails the download itself.
	if r.URL.Query().Get("save") == "true" {
		path, err := h.pdfRenderer.Save(filename, pdfBytes)
		if err != nil {
			log.Printf("Saving quotation PDF %s failed: %v", quotation.ID, err)
		} else {
			log.Printf("Saved quotation PDF %s to %s", quotation.ID, path)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

// loadQuotation parses the route ID and fetches the owner-scoped
// quotation, writing the error response itself on failure.
func (h *QuotationHandler) loadQuotation(w http.ResponseWriter, r *http.Request) (*models.QuotationResponse, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}

	quotationID, err := uuid.Parse(chi.URLParam(r, "quotationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid quotation ID")
		return nil, false
	}

	quotation, err := h.quotationService.Get(r.Context(), userID, quotationID)
	if err != nil {
		if errors.Is(err, services.ErrQuotationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error()) // 404
			return nil, false
		}
		log.Printf("Fetching quotation %s failed for user %s: %v", quotationID, userID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch quotation")
		return nil, false
	}
	return quotation, true
}
