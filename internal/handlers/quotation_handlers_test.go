package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proposaldesk-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// stubQuotationService serves one fixed quotation.
type stubQuotationService struct {
	quotation *models.QuotationResponse
	err       error
}

func (s *stubQuotationService) Generate(context.Context, uuid.UUID, string, models.ClientDetails) (*models.QuotationResponse, error) {
	return s.quotation, s.err
}

func (s *stubQuotationService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.QuotationResponse, error) {
	return s.quotation, s.err
}

func (s *stubQuotationService) List(context.Context, uuid.UUID, bool) (*models.ListQuotationsResponse, error) {
	return &models.ListQuotationsResponse{}, s.err
}

func (s *stubQuotationService) Accept(context.Context, uuid.UUID, uuid.UUID) error {
	return s.err
}

func (s *stubQuotationService) RenderPrintable(*models.QuotationResponse) (string, error) {
	return "<html>quotation</html>", s.err
}

// stubPDFRenderer records Save calls.
type stubPDFRenderer struct {
	savedName string
	savedData []byte
	saveErr   error
}

func (r *stubPDFRenderer) Render(string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func (r *stubPDFRenderer) Save(name string, data []byte) (string, error) {
	if r.saveErr != nil {
		return "", r.saveErr
	}
	r.savedName = name
	r.savedData = data
	return "downloads/" + name, nil
}

func pdfTestRouter(renderer *stubPDFRenderer) (*chi.Mux, uuid.UUID) {
	quotation := &models.QuotationResponse{
		ID:         uuid.New(),
		Business:   "a trading company",
		RawContent: "Service - Rs. 10,000",
		ClientDetails: models.ClientDetails{
			ClientName:  "Ravi Kumar",
			CompanyName: "Kumar Traders",
		},
		CreatedAt: time.Now(),
	}
	h := NewQuotationHandler(&stubQuotationService{quotation: quotation}, renderer)
	router := chi.NewRouter()
	router.Get("/v1/quotations/{quotationID}/document.pdf", h.HandleDownloadQuotationPDF)
	return router, quotation.ID
}

func TestDownloadQuotationPDF(t *testing.T) {
	renderer := &stubPDFRenderer{}
	router, quotationID := pdfTestRouter(renderer)

	rec := httptest.NewRecorder()
	target := "/v1/quotations/" + quotationID.String() + "/document.pdf"
	router.ServeHTTP(rec, authedRequest(http.MethodGet, target, models.RoleClient))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}
	if rec.Body.String() != "%PDF-1.4 stub" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if renderer.savedName != "" {
		t.Errorf("Save was called without ?save=true (name %q)", renderer.savedName)
	}
}

func TestDownloadQuotationPDFSavesCopy(t *testing.T) {
	renderer := &stubPDFRenderer{}
	router, quotationID := pdfTestRouter(renderer)

	rec := httptest.NewRecorder()
	target := "/v1/quotations/" + quotationID.String() + "/document.pdf?save=true"
	router.ServeHTTP(rec, authedRequest(http.MethodGet, target, models.RoleClient))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if renderer.savedName != "quotation_Kumar Traders.pdf" {
		t.Errorf("saved name = %q", renderer.savedName)
	}
	if string(renderer.savedData) != "%PDF-1.4 stub" {
		t.Errorf("saved data = %q", renderer.savedData)
	}
}

func TestDownloadQuotationPDFSaveFailureStillStreams(t *testing.T) {
	renderer := &stubPDFRenderer{saveErr: errors.New("disk full")}
	router, quotationID := pdfTestRouter(renderer)

	rec := httptest.NewRecorder()
	target := "/v1/quotations/" + quotationID.String() + "/document.pdf?save=true"
	router.ServeHTTP(rec, authedRequest(http.MethodGet, target, models.RoleClient))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d despite save failure", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "%PDF-1.4 stub" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
