package intake

import (
	"testing"

	"github.com/cessadesk/cessadesk/internal/errs"
)

func pdf(name string) File {
	return File{Name: name, ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
}

func fillIdentity(w *Wizard) {
	w.SetName("Maria Silva")
	w.SetRE("1234567")
	w.SetEmail("m@x.com")
	w.SetPhone("11912345678")
}

func TestWizardGatesForwardMoves(t *testing.T) {
	c, _ := LoadCatalog("default")
	w := NewWizard(c)

	if err := w.Next(); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("expected validation error on empty identification, got %v", err)
	}
	if w.Current() != StepIdentification {
		t.Fatalf("must stay on identification, at %s", w.Current())
	}

	fillIdentity(w)
	if w.Form().RE != "123456-7" || w.Form().Phone != "(11) 91234-5678" {
		t.Fatalf("masks not applied: %+v", w.Form())
	}
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Current() != StepDocuments {
		t.Fatalf("expected documents step, at %s", w.Current())
	}

	_ = w.Attach("identidade", pdf("rg.pdf"))
	_ = w.Attach("residencia", pdf("conta.pdf"))
	err := w.Next()
	if !errs.Is(err, errs.KindValidation) || errs.FieldOf(err) != "Último Holerite" {
		t.Fatalf("expected missing holerite, got %v", err)
	}

	_ = w.Attach("holerite", pdf("holerite.pdf"))
	if err := w.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Current() != StepConsent || !w.Last() {
		t.Fatalf("expected consent as last step, at %s", w.Current())
	}
}

func TestWizardBackIsUnconditional(t *testing.T) {
	c, _ := LoadCatalog("default")
	w := NewWizard(c)
	w.Back()
	if w.Index() != 0 {
		t.Fatal("back on the first step must be a no-op")
	}
	fillIdentity(w)
	_ = w.Next()
	w.SetName("")
	w.Back()
	if w.Current() != StepIdentification {
		t.Fatalf("back must not validate, at %s", w.Current())
	}
}

func TestWizardAttachReplacesSlot(t *testing.T) {
	c, _ := LoadCatalog("default")
	w := NewWizard(c)
	_ = w.Attach("holerite", pdf("old.pdf"))
	_ = w.Attach("holerite", pdf("new.pdf"))
	f, ok := w.Attachment("holerite")
	if !ok || f.Name != "new.pdf" {
		t.Fatalf("expected replacement, got %+v", f)
	}
	if err := w.Attach("nope", pdf("x.pdf")); err == nil {
		t.Fatal("unknown slot must be rejected")
	}
	if err := w.Attach("holerite", File{Name: "empty.pdf"}); err == nil {
		t.Fatal("empty file must be rejected")
	}
}

func TestWizardSubmitRequiresConsent(t *testing.T) {
	c, _ := LoadCatalog("default")
	w := NewWizard(c)
	fillIdentity(w)
	_ = w.Next()
	for _, k := range []string{"identidade", "residencia", "holerite"} {
		_ = w.Attach(k, pdf(k+".pdf"))
	}
	if err := w.Next(); err != nil {
		t.Fatalf("documents: %v", err)
	}
	_, err := w.Submit()
	if errs.FieldOf(err) != "agreedToTerms" {
		t.Fatalf("expected consent error, got %v", err)
	}
	if w.Form().Name != "Maria Silva" {
		t.Fatal("failed submit must keep entered data")
	}

	w.SetConsent(true)
	p, err := w.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(p.Files) != 3 {
		t.Fatalf("expected 3 attachments, got %d", len(p.Files))
	}
}

func TestWizardSubmitOnlyFromLastStep(t *testing.T) {
	c, _ := LoadCatalog("default")
	w := NewWizard(c)
	fillIdentity(w)
	for _, k := range []string{"identidade", "residencia", "holerite"} {
		_ = w.Attach(k, pdf(k+".pdf"))
	}
	w.SetConsent(true)

	for i := 0; i < 2; i++ {
		if _, err := w.Submit(); !errs.Is(err, errs.KindValidation) {
			t.Fatalf("submit from %s: expected validation error, got %v", w.Current(), err)
		}
		if err := w.Next(); err != nil {
			t.Fatalf("next from %s: %v", w.Current(), err)
		}
	}
	if !w.Last() {
		t.Fatalf("expected last step, at %s", w.Current())
	}
	if _, err := w.Submit(); err != nil {
		t.Fatalf("submit from last step: %v", err)
	}
}

func TestWizardJudicialStrategyStep(t *testing.T) {
	c, _ := LoadCatalog("judicial")
	w := NewWizard(c)
	if len(w.Steps()) != 4 {
		t.Fatalf("expected 4 steps, got %v", w.Steps())
	}
	if !w.Form().IsJudicial {
		t.Fatal("judicial claim is preselected")
	}
	fillIdentity(w)
	_ = w.Next()
	for _, k := range []string{"identidade", "residencia", "holerite"} {
		_ = w.Attach(k, pdf(k+".pdf"))
	}
	if err := w.Next(); err != nil {
		t.Fatalf("documents: %v", err)
	}
	if w.Current() != StepStrategy {
		t.Fatalf("expected strategy, at %s", w.Current())
	}
	if got := len(w.SlotsForStep(StepStrategy)); got != 3 {
		t.Fatalf("judicial strategy expects 3 slots, got %d", got)
	}

	w.SetJudicial(false)
	if err := w.Next(); errs.FieldOf(err) != "Termo de Declaração de Desligamento" {
		t.Fatalf("expected missing termo, got %v", err)
	}
	_ = w.Attach("termo-desligamento", pdf("termo.pdf"))
	_ = w.Attach("hipossuficiencia", pdf("stale.pdf"))
	if err := w.Next(); err != nil {
		t.Fatalf("strategy: %v", err)
	}
	w.SetConsent(true)
	p, err := w.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(p.Files) != 4 {
		t.Fatalf("judicial-only files must be dropped, got %d files", len(p.Files))
	}
}

func TestAssembleChecksIdentityShape(t *testing.T) {
	c, _ := LoadCatalog("default")
	base := Form{Name: "Maria", RE: "123456-7", Email: "m@x.com", Phone: "(11) 91234-5678", AgreedToTerms: true}
	files := map[string]File{"identidade": pdf("a"), "residencia": pdf("b"), "holerite": pdf("c")}

	cases := map[string]func(f *Form){
		"re":    func(f *Form) { f.RE = "12345" },
		"phone": func(f *Form) { f.Phone = "(11) 9123" },
		"email": func(f *Form) { f.Email = "not-an-email" },
		"name":  func(f *Form) { f.Name = "   " },
	}
	for field, mutate := range cases {
		f := base
		mutate(&f)
		_, err := Assemble(c, f, files)
		if errs.FieldOf(err) != field {
			t.Errorf("%s: expected field error, got %v", field, err)
		}
	}
	if _, err := Assemble(c, base, files); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
}
