package repository

import (
	"context"
	"log"

	"github.com/cessadesk/cessadesk/internal/db"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/oxidb"
	"github.com/cessadesk/cessadesk/internal/store"
)

const SubmissionsCollection = "cessation_submissions"

type SubmissionRepo struct {
	pool *db.Pool
}

func NewSubmissionRepo(pool *db.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, SubmissionsCollection, "createdAt"); err != nil {
		return err
	}
	return c.CreateIndex(ctx, SubmissionsCollection, "status")
}

func (r *SubmissionRepo) Insert(ctx context.Context, sub *models.Submission) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, SubmissionsCollection, toDoc(sub))
	if err != nil {
		return "", storeErr(err)
	}
	return extractID(result), nil
}

func (r *SubmissionRepo) List(ctx context.Context) ([]models.Submission, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, SubmissionsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": -1},
	})
	if err != nil {
		return nil, err
	}
	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		var s models.Submission
		if err := fromDoc(d, &s); err != nil {
			log.Printf("Warning: skipping unreadable submission: %v", err)
			continue
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, SubmissionsCollection, byID(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var s models.Submission
	if err := fromDoc(doc, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepo) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	c := r.pool.Get()
	n, err := c.UpdateOne(ctx, SubmissionsCollection, byID(id), map[string]any{
		"$set": map[string]any{"status": string(status)},
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return r.existsOr(ctx, id)
	}
	return nil
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	c := r.pool.Get()
	n, err := c.DeleteOne(ctx, SubmissionsCollection, byID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// existsOr tells "no such row" apart from "value already set", which
// OxiDB both reports as zero modified documents.
func (r *SubmissionRepo) existsOr(ctx context.Context, id string) error {
	n, err := r.pool.Get().Count(ctx, SubmissionsCollection, byID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
