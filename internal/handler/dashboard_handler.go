package handler

import (
	"net/http"

	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/service"
)

type DashboardHandler struct {
	subSvc *service.SubmissionService
}

func NewDashboardHandler(subSvc *service.SubmissionService) *DashboardHandler {
	return &DashboardHandler{subSvc: subSvc}
}

// Dashboard reports submission counts per status, in workflow order.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, total, err := h.subSvc.Stats(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	byStatus := make([]map[string]any, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		byStatus = append(byStatus, map[string]any{"status": st, "count": counts[st]})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissionCount": total,
		"byStatus":        byStatus,
	})
}
