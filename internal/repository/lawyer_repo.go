package repository

import (
	"context"

	"github.com/cessadesk/cessadesk/internal/db"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/oxidb"
	"github.com/cessadesk/cessadesk/internal/store"
)

const LawyersCollection = "lawyers"

type LawyerRepo struct {
	pool *db.Pool
}

func NewLawyerRepo(pool *db.Pool) *LawyerRepo {
	return &LawyerRepo{pool: pool}
}

func (r *LawyerRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	return c.CreateUniqueIndex(ctx, LawyersCollection, "oab")
}

func (r *LawyerRepo) Insert(ctx context.Context, l *models.Lawyer) (string, error) {
	c := r.pool.Get()
	doc := map[string]any{
		"oab":          l.OAB,
		"name":         l.Name,
		"phone":        l.Phone,
		"passwordHash": l.PasswordHash,
		"status":       string(l.Status),
		"createdAt":    l.CreatedAt,
	}
	result, err := c.Insert(ctx, LawyersCollection, doc)
	if err != nil {
		return "", storeErr(err)
	}
	return extractID(result), nil
}

func (r *LawyerRepo) FindByOAB(ctx context.Context, oab string) (*models.Lawyer, error) {
	return r.findOne(ctx, map[string]any{"oab": oab})
}

func (r *LawyerRepo) FindByID(ctx context.Context, id string) (*models.Lawyer, error) {
	return r.findOne(ctx, byID(id))
}

func (r *LawyerRepo) findOne(ctx context.Context, query map[string]any) (*models.Lawyer, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, LawyersCollection, query)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var l models.Lawyer
	if err := fromDoc(doc, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LawyerRepo) List(ctx context.Context) ([]models.Lawyer, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, LawyersCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": -1},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Lawyer, 0, len(docs))
	for _, d := range docs {
		var l models.Lawyer
		if err := fromDoc(d, &l); err != nil {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *LawyerRepo) UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error {
	c := r.pool.Get()
	n, err := c.UpdateOne(ctx, LawyersCollection, byID(id), map[string]any{
		"$set": map[string]any{"status": string(status)},
	})
	if err != nil {
		return err
	}
	if n == 0 {
		found, err := c.Count(ctx, LawyersCollection, byID(id))
		if err != nil {
			return err
		}
		if found == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

func (r *LawyerRepo) Delete(ctx context.Context, id string) error {
	c := r.pool.Get()
	n, err := c.DeleteOne(ctx, LawyersCollection, byID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
