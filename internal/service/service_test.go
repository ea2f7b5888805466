package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/events"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store/storetest"
	"github.com/cessadesk/cessadesk/internal/upload"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func mariaForm() intake.Form {
	return intake.Form{
		Name:          "Maria Silva",
		RE:            "1234567",
		Email:         "maria@example.com",
		Phone:         "11912345678",
		AgreedToTerms: true,
	}
}

func mariaFiles() map[string]intake.File {
	return map[string]intake.File{
		"identidade": {Name: "re.jpg", Data: []byte("jpg")},
		"residencia": {Name: "conta.pdf", Data: []byte("pdf")},
		"holerite":   {Name: "holerite.pdf", Data: []byte("pdf")},
	}
}

type intakeFixture struct {
	svc     *IntakeService
	subs    *storetest.Submissions
	objects *storetest.Objects
	events  *recorder
}

func newIntake(t *testing.T) *intakeFixture {
	t.Helper()
	c, err := intake.LoadCatalog("default")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := &intakeFixture{
		subs:    storetest.NewSubmissions(),
		objects: storetest.NewObjects(),
		events:  &recorder{},
	}
	f.svc = NewIntakeService(c, upload.NewOrchestrator(f.objects), f.subs, f.events)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestSubmitCreatesPendingSubmission(t *testing.T) {
	f := newIntake(t)

	sub, err := f.svc.Submit(context.Background(), mariaForm(), mariaFiles())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.ID == "" || sub.Status != models.StatusPending {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.RE != "123456-7" || sub.Phone != "(11) 91234-5678" {
		t.Fatalf("expected masked identity, got %s %s", sub.RE, sub.Phone)
	}
	if sub.CreatedAt != "2024-05-10T12:00:00.000000Z" {
		t.Fatalf("unexpected createdAt %s", sub.CreatedAt)
	}
	if len(sub.Files) != 3 || f.objects.Len() != 3 {
		t.Fatalf("expected 3 stored files, got %d/%d", len(sub.Files), f.objects.Len())
	}
	for _, a := range sub.Files {
		if !strings.HasPrefix(a.Path, "1234567/") || !a.Retrievable() {
			t.Fatalf("unexpected attachment %+v", a)
		}
	}
	if f.subs.Len() != 1 {
		t.Fatal("expected one row")
	}
	if got := f.events.types(); !slices.Equal(got, []events.Type{events.SubmissionCreated}) {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestSubmitValidationStoresNothing(t *testing.T) {
	f := newIntake(t)
	form := mariaForm()
	form.AgreedToTerms = false

	_, err := f.svc.Submit(context.Background(), form, mariaFiles())
	if !errs.Is(err, errs.KindValidation) || errs.FieldOf(err) != "agreedToTerms" {
		t.Fatalf("expected consent validation error, got %v", err)
	}
	if f.objects.Len() != 0 || len(f.subs.Calls) != 0 {
		t.Fatal("nothing may be stored before validation passes")
	}
}

func TestSubmitUploadFailureInsertsNoRow(t *testing.T) {
	f := newIntake(t)
	f.objects.FailAfter = 2

	_, err := f.svc.Submit(context.Background(), mariaForm(), mariaFiles())
	if !errs.Is(err, errs.KindUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if errs.FieldOf(err) != "Comprovante de Residência" {
		t.Fatalf("error should name the failing slot, got %q", errs.FieldOf(err))
	}
	if len(f.subs.Calls) != 0 {
		t.Fatalf("row insert must not happen, calls: %v", f.subs.Calls)
	}
	if f.objects.Len() != 0 {
		t.Fatal("already uploaded files should be removed")
	}
	if len(f.events.types()) != 0 {
		t.Fatal("no event on failure")
	}
}

func TestSubmitInsertFailureDiscardsFiles(t *testing.T) {
	f := newIntake(t)
	f.subs.FailOn["insert"] = true

	_, err := f.svc.Submit(context.Background(), mariaForm(), mariaFiles())
	if !errs.Is(err, errs.KindPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if f.objects.Len() != 0 || len(f.objects.Deleted) != 3 {
		t.Fatalf("expected 3 files removed, deleted %v", f.objects.Deleted)
	}
}

var (
	superadmin = &auth.Principal{ID: "superadmin", Login: "admin", Role: auth.RoleSuperadmin}
	lawyer     = &auth.Principal{ID: "7", Login: "123456", Role: auth.RoleLawyer}
)

func seededSubmissions() *storetest.Submissions {
	return storetest.NewSubmissions(
		models.Submission{ID: "1", Name: "Maria Silva", RE: "123456-7", Status: models.StatusPending, CreatedAt: "2024-01-02",
			Files: []models.Attachment{
				{Label: "Último Holerite", URL: "https://files.test/1234567/h.pdf", Path: "1234567/h.pdf"},
				{Label: "Comprovante de Residência", URL: "blob:http://localhost/abc"},
			}},
		models.Submission{ID: "2", Name: "João Souza", RE: "765432-1", Status: models.StatusCompleted, CreatedAt: "2024-01-01"},
	)
}

func TestSetStatus(t *testing.T) {
	subs := seededSubmissions()
	rec := &recorder{}
	svc := NewSubmissionService(subs, storetest.NewObjects(), rec)
	ctx := context.Background()

	if err := svc.SetStatus(ctx, lawyer, "2", models.StatusPending); err != nil {
		t.Fatalf("backwards transition should be allowed: %v", err)
	}
	got, _ := svc.Get(ctx, "2")
	if got.Status != models.StatusPending {
		t.Fatalf("expected Pendente, got %s", got.Status)
	}
	if err := svc.SetStatus(ctx, lawyer, "2", "Arquivado"); !errs.Is(err, errs.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SetStatus(ctx, lawyer, "99", models.StatusReview); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if rec.events[0].Actor != "123456" {
		t.Fatalf("expected actor on event, got %+v", rec.events[0])
	}
}

func TestDeleteRequiresSuperadmin(t *testing.T) {
	subs := seededSubmissions()
	objects := storetest.NewObjects()
	svc := NewSubmissionService(subs, objects, &recorder{})
	ctx := context.Background()

	if err := svc.Delete(ctx, lawyer, "1"); !errs.Is(err, errs.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if subs.Len() != 2 {
		t.Fatal("lawyer must not delete")
	}
	if err := svc.Delete(ctx, superadmin, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if subs.Len() != 1 {
		t.Fatal("row should be gone")
	}
	if !slices.Equal(objects.Deleted, []string{"1234567/h.pdf"}) {
		t.Fatalf("expected stored file removed, got %v", objects.Deleted)
	}
	if err := svc.Delete(ctx, superadmin, "1"); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAttachmentRetrievability(t *testing.T) {
	svc := NewSubmissionService(seededSubmissions(), storetest.NewObjects(), nil)
	ctx := context.Background()

	a, err := svc.Attachment(ctx, "1", 0)
	if err != nil || a.URL != "https://files.test/1234567/h.pdf" {
		t.Fatalf("expected stored attachment, got %+v %v", a, err)
	}
	_, err = svc.Attachment(ctx, "1", 1)
	if !errs.Is(err, errs.KindNotFound) || !strings.Contains(errs.Message(err), "Comprovante de Residência") {
		t.Fatalf("expected explicit unavailable error, got %v", err)
	}
	if _, err := svc.Attachment(ctx, "1", 5); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expected not found for bad index, got %v", err)
	}
}

func TestStats(t *testing.T) {
	svc := NewSubmissionService(seededSubmissions(), storetest.NewObjects(), nil)
	counts, total, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if total != 2 || counts[models.StatusPending] != 1 || counts[models.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats %v %d", counts, total)
	}
	if _, ok := counts[models.StatusFiled]; !ok {
		t.Fatal("every status should be reported")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	lawyers := storetest.NewLawyers()
	rec := &recorder{}
	ls := NewLawyerService(lawyers, rec)
	as := NewAuthService(auth.Chain{
		auth.StaticAuthenticator{User: "admin", Password: "s3cret"},
		auth.TableAuthenticator{Lawyers: lawyers},
	}, "test-secret", time.Hour)
	ctx := context.Background()

	l, err := ls.Register(ctx, RegisterRequest{OAB: "SP 123.456", Name: "Dra. Ana", Password: "senha123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if l.OAB != "123456" || l.Status != models.AccountPending || l.PasswordHash == "senha123" {
		t.Fatalf("unexpected account %+v", l)
	}
	if _, err := ls.Register(ctx, RegisterRequest{OAB: "123456", Name: "Outra", Password: "senha123"}); !errs.Is(err, errs.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := as.Login(ctx, "123456", "senha123"); !errs.Is(err, errs.KindAuth) {
		t.Fatalf("pending account must not log in, got %v", err)
	}

	if err := ls.SetStatus(ctx, superadmin, l.ID, models.AccountActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	res, err := as.Login(ctx, "123456", "senha123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.Role != auth.RoleLawyer || res.Token == "" {
		t.Fatalf("unexpected login result %+v", res)
	}
	claims, err := auth.ValidateToken("test-secret", res.Token)
	if err != nil || claims.Subject != l.ID {
		t.Fatalf("token should carry the account id: %+v %v", claims, err)
	}

	if _, err := as.Login(ctx, "123456", "wrong"); errs.Message(err) != "invalid credentials" {
		t.Fatalf("expected generic failure, got %v", err)
	}
	admin, err := as.Login(ctx, "admin", "s3cret")
	if err != nil || admin.User.Role != auth.RoleSuperadmin {
		t.Fatalf("superadmin login: %+v %v", admin, err)
	}
}

func TestLawyerSetStatusIdempotent(t *testing.T) {
	lawyers := storetest.NewLawyers(models.Lawyer{ID: "1", OAB: "123456", Status: models.AccountActive})
	rec := &recorder{}
	ls := NewLawyerService(lawyers, rec)

	if err := ls.SetStatus(context.Background(), superadmin, "1", models.AccountActive); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if slices.Contains(lawyers.Calls, "update") {
		t.Fatalf("same value must not hit the store, calls %v", lawyers.Calls)
	}
	if len(rec.events) != 0 {
		t.Fatal("no event for a no-op")
	}
	if err := ls.SetStatus(context.Background(), superadmin, "1", models.AccountBlocked); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := ls.Delete(context.Background(), superadmin, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ls.Delete(context.Background(), superadmin, "1"); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLawyerManagementRequiresSuperadmin(t *testing.T) {
	lawyers := storetest.NewLawyers(models.Lawyer{ID: "1", OAB: "123456", Status: models.AccountActive})
	ls := NewLawyerService(lawyers, nil)
	ctx := context.Background()

	for _, actor := range []*auth.Principal{nil, lawyer} {
		if err := ls.SetStatus(ctx, actor, "1", models.AccountBlocked); !errs.Is(err, errs.KindForbidden) {
			t.Fatalf("set status as %v: expected forbidden, got %v", actor, err)
		}
		if err := ls.Delete(ctx, actor, "1"); !errs.Is(err, errs.KindForbidden) {
			t.Fatalf("delete as %v: expected forbidden, got %v", actor, err)
		}
	}
	if len(lawyers.Calls) != 0 {
		t.Fatalf("forbidden calls must not reach the store, calls %v", lawyers.Calls)
	}
	if l, _ := lawyers.FindByID(ctx, "1"); l == nil || l.Status != models.AccountActive {
		t.Fatalf("account must be untouched, got %+v", l)
	}
}

func TestOpenFileSeparatesMissingFromOutage(t *testing.T) {
	objects := storetest.NewObjects()
	svc := NewSubmissionService(storetest.NewSubmissions(), objects, nil)
	ctx := context.Background()

	if err := objects.Put(ctx, "1234567/a.pdf", []byte("%PDF"), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, ct, err := svc.OpenFile(ctx, "1234567/a.pdf")
	if err != nil || string(data) != "%PDF" || ct != "application/pdf" {
		t.Fatalf("open: %q %q %v", data, ct, err)
	}
	if _, _, err := svc.OpenFile(ctx, "1234567/missing.pdf"); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	objects.FailGet = true
	if _, _, err := svc.OpenFile(ctx, "1234567/a.pdf"); !errs.Is(err, errs.KindPersistence) {
		t.Fatalf("storage outage must not look like a missing file, got %v", err)
	}
}
