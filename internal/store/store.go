// Package store declares the contracts the application needs from the
// external backend. Implementations live in repository (OxiDB), sqlstore
// (Postgres/SQLite) and objstore (S3-compatible storage).
package store

import (
	"context"
	"errors"

	"github.com/cessadesk/cessadesk/internal/models"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Submissions is the submission table.
type Submissions interface {
	Insert(ctx context.Context, sub *models.Submission) (string, error)
	// List returns every row, newest first.
	List(ctx context.Context) ([]models.Submission, error)
	// FindByID returns nil, nil when the row does not exist.
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
}

// Lawyers is the reviewer-account table.
type Lawyers interface {
	Insert(ctx context.Context, l *models.Lawyer) (string, error)
	// FindByOAB returns nil, nil when no account has that bar number.
	FindByOAB(ctx context.Context, oab string) (*models.Lawyer, error)
	FindByID(ctx context.Context, id string) (*models.Lawyer, error)
	List(ctx context.Context) ([]models.Lawyer, error)
	UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error
	Delete(ctx context.Context, id string) error
}

// Objects is the blob store holding uploaded documents.
type Objects interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	// URL resolves a stored path to a retrievable address.
	URL(path string) string
	Get(ctx context.Context, path string) ([]byte, string, error)
	Delete(ctx context.Context, path string) error
}
