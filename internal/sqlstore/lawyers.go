package sqlstore

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

const lawyerColumns = `id, oab, name, phone, password_hash, status, created_at`

// Lawyers is the lawyers table.
type Lawyers struct {
	db *DB
}

func NewLawyers(db *DB) *Lawyers {
	return &Lawyers{db: db}
}

func (l *Lawyers) Insert(ctx context.Context, in *models.Lawyer) (string, error) {
	var id int64
	err := l.db.QueryRowContext(ctx, l.db.rebind(`
		INSERT INTO lawyers (oab, name, phone, password_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		in.OAB, in.Name, in.Phone, in.PasswordHash, string(in.Status), in.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", storeErr(err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (l *Lawyers) FindByOAB(ctx context.Context, oab string) (*models.Lawyer, error) {
	return l.findOne(ctx, `oab = ?`, oab)
}

func (l *Lawyers) FindByID(ctx context.Context, id string) (*models.Lawyer, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return l.findOne(ctx, `id = ?`, n)
}

func (l *Lawyers) findOne(ctx context.Context, where string, arg any) (*models.Lawyer, error) {
	row := l.db.QueryRowContext(ctx, l.db.rebind(
		`SELECT `+lawyerColumns+` FROM lawyers WHERE `+where), arg)
	out, err := scanLawyer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return out, err
}

func (l *Lawyers) List(ctx context.Context) ([]models.Lawyer, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+lawyerColumns+` FROM lawyers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lawyer
	for rows.Next() {
		lw, err := scanLawyer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *lw)
	}
	return out, rows.Err()
}

func (l *Lawyers) UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error {
	n, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	res, err := l.db.ExecContext(ctx, l.db.rebind(
		`UPDATE lawyers SET status = ? WHERE id = ?`), string(status), n)
	if err != nil {
		return err
	}
	return affected(res)
}

func (l *Lawyers) Delete(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	res, err := l.db.ExecContext(ctx, l.db.rebind(`DELETE FROM lawyers WHERE id = ?`), n)
	if err != nil {
		return err
	}
	return affected(res)
}

func scanLawyer(row scanner) (*models.Lawyer, error) {
	var (
		out    models.Lawyer
		id     int64
		status string
	)
	if err := row.Scan(&id, &out.OAB, &out.Name, &out.Phone, &out.PasswordHash, &status, &out.CreatedAt); err != nil {
		return nil, err
	}
	out.ID = strconv.FormatInt(id, 10)
	out.Status = models.AccountStatus(status)
	return &out, nil
}
