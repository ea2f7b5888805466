package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

const submissionColumns = `id, name, re, email, phone, is_judicial, agreed_to_terms, status, created_at, files`

// Submissions is the cessation_submissions table.
type Submissions struct {
	db *DB
}

func NewSubmissions(db *DB) *Submissions {
	return &Submissions{db: db}
}

func (s *Submissions) Insert(ctx context.Context, sub *models.Submission) (string, error) {
	files, err := json.Marshal(nonNil(sub.Files))
	if err != nil {
		return "", fmt.Errorf("marshal files: %w", err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx, s.db.rebind(`
		INSERT INTO cessation_submissions
			(name, re, email, phone, is_judicial, agreed_to_terms, status, created_at, files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		sub.Name, sub.RE, sub.Email, sub.Phone, sub.IsJudicial, sub.AgreedToTerms,
		string(sub.Status), sub.CreatedAt, string(files),
	).Scan(&id)
	if err != nil {
		return "", storeErr(err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Submissions) List(ctx context.Context) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM cessation_submissions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (s *Submissions) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, s.db.rebind(
		`SELECT `+submissionColumns+` FROM cessation_submissions WHERE id = ?`), n)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (s *Submissions) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	n, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, s.db.rebind(
		`UPDATE cessation_submissions SET status = ? WHERE id = ?`), string(status), n)
	if err != nil {
		return err
	}
	return affected(res)
}

func (s *Submissions) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, s.db.rebind(
		`DELETE FROM cessation_submissions WHERE id = ?`), n)
	if err != nil {
		return err
	}
	return affected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		sub    models.Submission
		id     int64
		status string
		files  []byte
	)
	err := row.Scan(&id, &sub.Name, &sub.RE, &sub.Email, &sub.Phone,
		&sub.IsJudicial, &sub.AgreedToTerms, &status, &sub.CreatedAt, &files)
	if err != nil {
		return nil, err
	}
	sub.ID = strconv.FormatInt(id, 10)
	sub.Status = models.Status(status)
	if err := json.Unmarshal(files, &sub.Files); err != nil {
		return nil, fmt.Errorf("decode files of submission %d: %w", id, err)
	}
	return &sub, nil
}

func nonNil(files []models.Attachment) []models.Attachment {
	if files == nil {
		return []models.Attachment{}
	}
	return files
}
