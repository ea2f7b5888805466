package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cessadesk/cessadesk/internal/errs"
)

func TestWriteErrStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		field  string
	}{
		{errs.Validation("re", "registration number is required"), http.StatusUnprocessableEntity, "re"},
		{errs.Upload("Último Holerite", errors.New("reset")), http.StatusBadGateway, "Último Holerite"},
		{errs.Persistence("insert submission", errors.New("pq: boom")), http.StatusInternalServerError, ""},
		{errs.Auth(), http.StatusUnauthorized, ""},
		{errs.Config("storage bucket is not set", "set CESSA_STORAGE_BUCKET"), http.StatusServiceUnavailable, ""},
		{errs.NotFound("submission"), http.StatusNotFound, ""},
		{errs.Conflict("bar number already registered"), http.StatusConflict, ""},
		{errs.Forbidden("only the superadmin may delete submissions"), http.StatusForbidden, ""},
		{fmt.Errorf("wrapped: %w", errs.NotFound("lawyer")), http.StatusNotFound, ""},
		{errors.New("driver exploded"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeErr(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v: status %d, want %d", tt.err, rec.Code, tt.status)
		}
		var body errorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Field != tt.field {
			t.Errorf("%v: field %q, want %q", tt.err, body.Field, tt.field)
		}
		if body.Error == "" || body.Error == "pq: boom" || body.Error == "driver exploded" {
			t.Errorf("%v: unexpected message %q", tt.err, body.Error)
		}
	}
}

func TestConfirmed(t *testing.T) {
	rec := httptest.NewRecorder()
	if confirmed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/submissions/1", nil)) {
		t.Fatal("missing confirmation must not pass")
	}
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if !confirmed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/submissions/1?confirm=yes", nil)) {
		t.Fatal("confirm=yes must pass")
	}
}
