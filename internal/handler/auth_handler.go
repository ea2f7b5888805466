package handler

import (
	"net/http"

	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/service"
)

type AuthHandler struct {
	svc     *service.AuthService
	lawyers *service.LawyerService
}

func NewAuthHandler(svc *service.AuthService, lawyers *service.LawyerService) *AuthHandler {
	return &AuthHandler{svc: svc, lawyers: lawyers}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.lawyers.Register(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"lawyer":  l.ToResponse(),
		"message": "registration received; wait for the administrator to approve your access",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Login == "" || req.Password == "" {
		writeErr(w, r, errs.Validation("login", "login and password are required"))
		return
	}
	result, err := h.svc.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logout is stateless: tokens are dropped by the client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		writeErr(w, r, errs.Auth())
		return
	}
	writeJSON(w, http.StatusOK, p)
}
