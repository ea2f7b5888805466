package service

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/events"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

// SubmissionService is the reviewer side of submissions.
type SubmissionService struct {
	subs    store.Submissions
	objects store.Objects
	events  events.Publisher
}

func NewSubmissionService(subs store.Submissions, objects store.Objects, pub events.Publisher) *SubmissionService {
	return &SubmissionService{subs: subs, objects: objects, events: pub}
}

// List returns every submission, newest first.
func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	subs, err := s.subs.List(ctx)
	if err != nil {
		return nil, errs.Persistence("list submissions", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	return subs, nil
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load submission", err)
	}
	if sub == nil {
		return nil, errs.NotFound("submission")
	}
	return sub, nil
}

// SetStatus moves a submission to any status. Transitions are not
// constrained to workflow order.
func (s *SubmissionService) SetStatus(ctx context.Context, actor *auth.Principal, id string, status models.Status) error {
	if !status.Valid() {
		return errs.Validation("status", "unknown status "+strconv.Quote(string(status)))
	}
	if err := s.subs.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("submission")
		}
		return errs.Persistence("update status", err)
	}
	events.Emit(ctx, s.events, events.New(events.SubmissionStatusChanged, id, actorLogin(actor), map[string]any{
		"status": string(status),
	}))
	return nil
}

// Delete removes a submission and its stored files. Superadmin only.
func (s *SubmissionService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if actor == nil || !actor.Superadmin() {
		return errs.Forbidden("only the superadmin may delete submissions")
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("submission")
		}
		return errs.Persistence("delete submission", err)
	}
	for _, f := range sub.Files {
		if f.Path == "" {
			continue
		}
		if err := s.objects.Delete(ctx, f.Path); err != nil {
			log.Printf("Warning: submission %s: could not remove %s: %v", id, f.Path, err)
		}
	}
	events.Emit(ctx, s.events, events.New(events.SubmissionDeleted, id, actorLogin(actor), nil))
	return nil
}

// Attachment returns file idx of a submission if it can be retrieved.
func (s *SubmissionService) Attachment(ctx context.Context, id string, idx int) (*models.Attachment, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(sub.Files) {
		return nil, errs.NotFound("file")
	}
	a := sub.Files[idx]
	if !a.Retrievable() {
		return nil, &errs.Error{
			Kind:    errs.KindNotFound,
			Field:   a.Label,
			Message: "file " + strconv.Quote(a.Label) + " is not available in storage",
		}
	}
	return &a, nil
}

// OpenFile reads a stored object by path, for backends whose objects are
// not publicly addressable.
func (s *SubmissionService) OpenFile(ctx context.Context, path string) ([]byte, string, error) {
	data, contentType, err := s.objects.Get(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", errs.NotFound("file")
		}
		return nil, "", errs.Persistence("read file", err)
	}
	return data, contentType, nil
}

// Stats counts submissions per status. Every status is present.
func (s *SubmissionService) Stats(ctx context.Context) (map[models.Status]int, int, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[st] = 0
	}
	for _, sub := range subs {
		counts[sub.Status]++
	}
	return counts, len(subs), nil
}

func actorLogin(p *auth.Principal) string {
	if p == nil {
		return ""
	}
	return p.Login
}
