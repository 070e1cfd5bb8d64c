package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"neetmentor-backend/internal/analytics"
	"neetmentor-backend/internal/middleware"
)

type reportBuilder interface {
	Report(ctx context.Context, userID uuid.UUID) (*analytics.Report, error)
}

// DashboardHandler serves the analytics page.
type DashboardHandler struct {
	reports reportBuilder
}

func NewDashboardHandler(reports reportBuilder) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// Analytics recomputes the caller's report from source records. Any store
// failure fails the whole response.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Report(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to build analytics report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
