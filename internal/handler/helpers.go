package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: encode response: %v", err)
	}
}

func readJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeErr maps an error to its HTTP status and writes the user-facing
// message. Causes are logged, never sent.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(errs.KindOf(err))
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorBody{Error: errs.Message(err), Field: errs.FieldOf(err)})
}

func statusFor(k errs.Kind) int {
	switch k {
	case errs.KindValidation:
		return http.StatusUnprocessableEntity
	case errs.KindUpload:
		return http.StatusBadGateway
	case errs.KindAuth:
		return http.StatusUnauthorized
	case errs.KindConfig:
		return http.StatusServiceUnavailable
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func principal(r *http.Request) *auth.Principal {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		return nil
	}
	return claims.Principal()
}

// confirmed reports whether a destructive request carries ?confirm=yes.
// Without it the handler answers 428 and does nothing.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "yes" {
		return true
	}
	writeError(w, http.StatusPreconditionRequired, "destructive action: repeat the request with ?confirm=yes")
	return false
}
