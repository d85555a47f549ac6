package http

import (
	"context"
	"net/http"

	"finmgmt/internal/domain/summary"
)

// SummaryService is implemented by summary.Service.
type SummaryService interface {
	Current(ctx context.Context) (*summary.Summary, error)
	Rebuild(ctx context.Context) (*summary.Summary, error)
}

type SummaryHandler struct {
	service SummaryService
}

func NewSummaryHandler(service SummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// HandleSummary returns the materialized summary; 404 until one has been built.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sum, err := h.service.Current(r.Context())
	if err != nil {
		writeDomainError(w, err, "get financial summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleRebuild rematerializes the summary and returns the new document.
func (h *SummaryHandler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sum, err := h.service.Rebuild(r.Context())
	if err != nil {
		writeDomainError(w, err, "rebuild financial summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
