package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cessadesk/cessadesk/internal/dashboard"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/service"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// List returns all submissions newest first, filtered by ?q= and ?status=.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	q := dashboard.Query{
		Term:   r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": dashboard.Filter(subs, q),
		"total":       len(subs),
	})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "subId"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// File redirects to a stored attachment.
func (h *SubmissionHandler) File(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeErr(w, r, errs.NotFound("file"))
		return
	}
	a, err := h.svc.Attachment(r.Context(), chi.URLParam(r, "subId"), idx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	http.Redirect(w, r, a.URL, http.StatusFound)
}

func (h *SubmissionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id := chi.URLParam(r, "subId")
	if err := h.svc.SetStatus(r.Context(), principal(r), id, req.Status); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(req.Status)})
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil || !p.Superadmin() {
		writeErr(w, r, errs.Forbidden("only the superadmin may delete submissions"))
		return
	}
	if !confirmed(w, r) {
		return
	}
	id := chi.URLParam(r, "subId")
	if err := h.svc.Delete(r.Context(), p, id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Object streams a stored object for backends without public URLs.
func (h *SubmissionHandler) Object(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if path == "" || strings.Contains(path, "..") {
		writeErr(w, r, errs.NotFound("file"))
		return
	}
	data, contentType, err := h.svc.OpenFile(r.Context(), path)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
