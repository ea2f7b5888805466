package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/service"
)

type IntakeHandler struct {
	svc       *service.IntakeService
	maxUpload int64
}

func NewIntakeHandler(svc *service.IntakeService, maxUploadMB int) *IntakeHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &IntakeHandler{svc: svc, maxUpload: int64(maxUploadMB) << 20}
}

// Slots lists the document slots for the judicial choice in ?judicial=.
func (h *IntakeHandler) Slots(w http.ResponseWriter, r *http.Request) {
	c := h.svc.Catalog()
	judicial := c.Branched()
	if v := r.URL.Query().Get("judicial"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, r, errs.Validation("judicial", "judicial must be true or false"))
			return
		}
		judicial = b
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"catalog":  c.Name,
		"branched": c.Branched(),
		"judicial": judicial,
		"steps":    intake.StepsFor(c),
		"slots":    c.Active(judicial),
	})
}

// Mask applies the input masks to raw keystrokes.
func (h *IntakeHandler) Mask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RE    string `json:"re"`
		Phone string `json:"phone"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"re":    intake.MaskRE(req.RE),
		"phone": intake.MaskPhone(req.Phone),
	})
}

// Validate checks the identification fields before the documents step.
func (h *IntakeHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var form intake.Form
	if err := readJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form = form.Normalize()
	if err := intake.ValidateIdentity(form); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "form": form})
}

// Submit accepts a multipart form: identity fields plus one file part per
// slot, named by slot key.
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or upload too large")
		return
	}

	form := intake.Form{
		Name:          r.FormValue("name"),
		RE:            r.FormValue("re"),
		Email:         r.FormValue("email"),
		Phone:         r.FormValue("phone"),
		IsJudicial:    formBool(r, "isJudicial", h.svc.Catalog().Branched()),
		AgreedToTerms: formBool(r, "agreedToTerms", false),
	}

	files := make(map[string]intake.File)
	for _, slot := range h.svc.Catalog().Slots {
		file, header, err := r.FormFile(slot.Key)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read file "+slot.Label)
			return
		}
		files[slot.Key] = intake.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	sub, err := h.svc.Submit(r.Context(), form, files)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func formBool(r *http.Request, key string, def bool) bool {
	v := r.FormValue(key)
	if v == "" {
		return def
	}
	if v == "on" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
