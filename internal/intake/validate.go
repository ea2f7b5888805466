package intake

import (
	"regexp"
	"strings"

	"github.com/cessadesk/cessadesk/internal/errs"
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Form holds the officer's typed answers. RE and Phone are stored masked.
type Form struct {
	Name          string `json:"name"`
	RE            string `json:"re"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	IsJudicial    bool   `json:"isJudicial"`
	AgreedToTerms bool   `json:"agreedToTerms"`
}

// Normalize trims free text and re-applies both masks.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.RE = MaskRE(f.RE)
	f.Phone = MaskPhone(f.Phone)
	return f
}

// File is the content chosen for one slot.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Attached pairs a slot with the file chosen for it.
type Attached struct {
	Slot Slot
	File File
}

// Payload is a fully validated submission ready for upload.
type Payload struct {
	Form  Form
	Files []Attached
}

// ValidateIdentity checks the identification fields.
func ValidateIdentity(f Form) error {
	switch {
	case f.Name == "":
		return errs.Validation("name", "full name is required")
	case f.RE == "":
		return errs.Validation("re", "registration number is required")
	case len(f.RE) < minREMasked:
		return errs.Validation("re", "registration number must have 6 digits plus check digit")
	case f.Email == "":
		return errs.Validation("email", "email is required")
	case !emailShape.MatchString(f.Email):
		return errs.Validation("email", "email is not valid")
	case f.Phone == "":
		return errs.Validation("phone", "phone is required")
	case len(f.Phone) < minPhoneMasked:
		return errs.Validation("phone", "phone must include area code")
	}
	return nil
}

// ValidateSlots checks that every required slot in slots has a file.
func ValidateSlots(slots []Slot, files map[string]File) error {
	for _, s := range slots {
		if !s.Required {
			continue
		}
		if f, ok := files[s.Key]; !ok || len(f.Data) == 0 {
			return errs.Validation(s.Label, "missing document: "+s.Label)
		}
	}
	return nil
}

// ValidateConsent checks the terms-acceptance flag.
func ValidateConsent(f Form) error {
	if !f.AgreedToTerms {
		return errs.Validation("agreedToTerms", "you must accept the terms before submitting")
	}
	return nil
}

// Assemble validates a complete form against the catalog and returns the
// payload to upload. Files for slots that do not apply to the judicial
// choice are dropped.
func Assemble(c *Catalog, f Form, files map[string]File) (*Payload, error) {
	f = f.Normalize()
	if err := ValidateIdentity(f); err != nil {
		return nil, err
	}
	active := c.Active(f.IsJudicial)
	if err := ValidateSlots(active, files); err != nil {
		return nil, err
	}
	if err := ValidateConsent(f); err != nil {
		return nil, err
	}
	p := &Payload{Form: f}
	for _, s := range active {
		if file, ok := files[s.Key]; ok && len(file.Data) > 0 {
			p.Files = append(p.Files, Attached{Slot: s, File: file})
		}
	}
	return p, nil
}
