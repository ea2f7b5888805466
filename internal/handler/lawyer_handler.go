package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/service"
)

type LawyerHandler struct {
	svc *service.LawyerService
}

func NewLawyerHandler(svc *service.LawyerService) *LawyerHandler {
	return &LawyerHandler{svc: svc}
}

func (h *LawyerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	resp := make([]models.LawyerResponse, 0, len(list))
	for i := range list {
		resp = append(resp, list[i].ToResponse())
	}
	writeJSON(w, http.StatusOK, map[string]any{"lawyers": resp})
}

func (h *LawyerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.AccountStatus `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "lawyerId")
	if err := h.svc.SetStatus(r.Context(), principal(r), id, req.Status); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}

func (h *LawyerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	id := chi.URLParam(r, "lawyerId")
	if err := h.svc.Delete(r.Context(), principal(r), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
