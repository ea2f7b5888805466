package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/cessadesk/cessadesk/internal/db"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/oxidb/oxidbtest"
	"github.com/cessadesk/cessadesk/internal/store"
)

var (
	_ store.Submissions = (*SubmissionRepo)(nil)
	_ store.Lawyers     = (*LawyerRepo)(nil)
	_ store.Objects     = (*BlobStore)(nil)
)

func newPool(t *testing.T) *db.Pool {
	t.Helper()
	srv := oxidbtest.Start(t)
	pool, err := db.NewPool(srv.Host(), srv.Port(), 2, 0)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestSubmissionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionRepo(newPool(t))
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	older := &models.Submission{
		Name: "João Souza", RE: "765432-1", Status: models.StatusPending,
		CreatedAt: "2024-03-01T10:00:00.000000Z",
	}
	newer := &models.Submission{
		Name: "Maria Silva", RE: "123456-7", Status: models.StatusPending,
		CreatedAt: "2024-03-02T10:00:00.000000Z", AgreedToTerms: true,
		Files: []models.Attachment{{Category: "Documentos Comuns", Label: "Último Holerite", Name: "h.pdf", URL: "https://x/h.pdf", Path: "1234567/h.pdf"}},
	}
	if _, err := repo.Insert(ctx, older); err != nil {
		t.Fatalf("insert: %v", err)
	}
	id, err := repo.Insert(ctx, newer)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("expected id")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Maria Silva" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].ID != id {
		t.Fatalf("expected id %s, got %s", id, list[0].ID)
	}

	if err := repo.UpdateStatus(ctx, id, models.StatusReview); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != models.StatusReview || len(got.Files) != 1 || got.Files[0].Path != "1234567/h.pdf" {
		t.Fatalf("unexpected row %+v", got)
	}

	if err := repo.UpdateStatus(ctx, "999", models.StatusReview); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if missing, _ := repo.FindByID(ctx, id); missing != nil {
		t.Fatal("row should be gone")
	}
}

func TestLawyerRepoUniqueOAB(t *testing.T) {
	ctx := context.Background()
	repo := NewLawyerRepo(newPool(t))
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	l := &models.Lawyer{OAB: "123456", Name: "Dra. Ana", PasswordHash: "x", Status: models.AccountPending}
	id, err := repo.Insert(ctx, l)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.Insert(ctx, l); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	if err := repo.UpdateStatus(ctx, id, models.AccountActive); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByOAB(ctx, "123456")
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
	if got.Status != models.AccountActive || got.PasswordHash != "x" || got.ID != id {
		t.Fatalf("unexpected lawyer %+v", got)
	}
	if none, err := repo.FindByOAB(ctx, "000"); none != nil || err != nil {
		t.Fatalf("expected nil, nil; got %v %v", none, err)
	}
}

func TestBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewBlobStore(newPool(t), "", "http://localhost:8080/")
	if err := blobs.EnsureBucket(ctx); err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if err := blobs.Put(ctx, "1234567/a b.pdf", []byte("pdf"), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if u := blobs.URL("1234567/a b.pdf"); u != "http://localhost:8080/files/1234567/a%20b.pdf" {
		t.Fatalf("unexpected url %s", u)
	}
	data, ct, err := blobs.Get(ctx, "1234567/a b.pdf")
	if err != nil || string(data) != "pdf" || ct != "application/pdf" {
		t.Fatalf("get: %q %q %v", data, ct, err)
	}
	if err := blobs.Delete(ctx, "1234567/a b.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := blobs.Get(ctx, "1234567/a b.pdf"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
