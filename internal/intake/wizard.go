package intake

import (
	"github.com/cessadesk/cessadesk/internal/errs"
)

// Step is one page of the intake wizard.
type Step string

const (
	StepIdentification Step = "identification"
	StepDocuments      Step = "documents"
	StepStrategy       Step = "strategy"
	StepConsent        Step = "consent"
)

// StepsFor returns the wizard steps for a catalog. A catalog with
// judicial/administrative slots gets a separate strategy step.
func StepsFor(c *Catalog) []Step {
	if c.Branched() {
		return []Step{StepIdentification, StepDocuments, StepStrategy, StepConsent}
	}
	return []Step{StepIdentification, StepDocuments, StepConsent}
}

// Wizard is the multi-step intake form. Moving forward is gated by the
// current step's checks; moving back is always allowed.
type Wizard struct {
	catalog *Catalog
	steps   []Step
	cur     int
	form    Form
	files   map[string]File
}

func NewWizard(c *Catalog) *Wizard {
	return &Wizard{
		catalog: c,
		steps:   StepsFor(c),
		form:    Form{IsJudicial: c.Branched()},
		files:   make(map[string]File),
	}
}

func (w *Wizard) Steps() []Step { return w.steps }
func (w *Wizard) Current() Step { return w.steps[w.cur] }
func (w *Wizard) Index() int { return w.cur }
func (w *Wizard) Last() bool { return w.cur == len(w.steps)-1 }
func (w *Wizard) Form() Form { return w.form }

func (w *Wizard) SetName(v string) { w.form.Name = v }
func (w *Wizard) SetEmail(v string) { w.form.Email = v }
func (w *Wizard) SetRE(v string) { w.form.RE = MaskRE(v) }
func (w *Wizard) SetPhone(v string) { w.form.Phone = MaskPhone(v) }
func (w *Wizard) SetJudicial(v bool) { w.form.IsJudicial = v }
func (w *Wizard) SetConsent(v bool) { w.form.AgreedToTerms = v }

// Attach stores f in the slot, replacing whatever was there.
func (w *Wizard) Attach(slotKey string, f File) error {
	s, ok := w.catalog.Lookup(slotKey)
	if !ok {
		return errs.Validation(slotKey, "unknown document slot "+slotKey)
	}
	if len(f.Data) == 0 {
		return errs.Validation(s.Label, "empty file for "+s.Label)
	}
	w.files[slotKey] = f
	return nil
}

// Attachment returns the file currently in a slot.
func (w *Wizard) Attachment(slotKey string) (File, bool) {
	f, ok := w.files[slotKey]
	return f, ok
}

// SlotsForStep returns the slots collected on step s.
func (w *Wizard) SlotsForStep(s Step) []Slot {
	var out []Slot
	for _, slot := range w.catalog.Active(w.form.IsJudicial) {
		common := slot.When == WhenAlways
		switch {
		case s == StepDocuments && (common || !w.catalog.Branched()):
			out = append(out, slot)
		case s == StepStrategy && !common:
			out = append(out, slot)
		}
	}
	return out
}

func (w *Wizard) check(s Step) error {
	switch s {
	case StepIdentification:
		return ValidateIdentity(w.form.Normalize())
	case StepDocuments, StepStrategy:
		return ValidateSlots(w.SlotsForStep(s), w.files)
	case StepConsent:
		return ValidateConsent(w.form)
	}
	return nil
}

// Next validates the current step and advances. On the last step it only
// validates.
func (w *Wizard) Next() error {
	if err := w.check(w.Current()); err != nil {
		return err
	}
	if !w.Last() {
		w.cur++
	}
	return nil
}

// Back returns to the previous step.
func (w *Wizard) Back() {
	if w.cur > 0 {
		w.cur--
	}
}

// Submit validates everything and returns the payload. It is only
// allowed from the last step. Entered data is kept so a failed submit can
// be corrected in place.
func (w *Wizard) Submit() (*Payload, error) {
	if !w.Last() {
		return nil, errs.Validation("", "finish every step before submitting")
	}
	return Assemble(w.catalog, w.form, w.files)
}
