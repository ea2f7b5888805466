package service

import (
	"context"
	"time"

	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/events"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
	"github.com/cessadesk/cessadesk/internal/upload"
)

// IntakeService turns a validated form into stored files plus one
// submission row. The row is only written after every file is stored.
type IntakeService struct {
	catalog *intake.Catalog
	uploads *upload.Orchestrator
	subs    store.Submissions
	events  events.Publisher
	now     func() time.Time
}

func NewIntakeService(catalog *intake.Catalog, uploads *upload.Orchestrator, subs store.Submissions, pub events.Publisher) *IntakeService {
	return &IntakeService{catalog: catalog, uploads: uploads, subs: subs, events: pub, now: time.Now}
}

func (s *IntakeService) Catalog() *intake.Catalog {
	return s.catalog
}

// Submit validates the form and files against the catalog, then stores them.
func (s *IntakeService) Submit(ctx context.Context, form intake.Form, files map[string]intake.File) (*models.Submission, error) {
	p, err := intake.Assemble(s.catalog, form, files)
	if err != nil {
		return nil, err
	}
	return s.SubmitPayload(ctx, p)
}

// SubmitPayload stores an already assembled payload.
func (s *IntakeService) SubmitPayload(ctx context.Context, p *intake.Payload) (*models.Submission, error) {
	attachments, err := s.uploads.Upload(ctx, p.Form.RE, p.Files)
	if err != nil {
		return nil, err
	}

	sub := &models.Submission{
		Name:          p.Form.Name,
		RE:            p.Form.RE,
		Email:         p.Form.Email,
		Phone:         p.Form.Phone,
		IsJudicial:    p.Form.IsJudicial,
		AgreedToTerms: p.Form.AgreedToTerms,
		Status:        models.StatusPending,
		CreatedAt:     models.Timestamp(s.now()),
		Files:         attachments,
	}
	id, err := s.subs.Insert(ctx, sub)
	if err != nil {
		s.uploads.Discard(ctx, attachments)
		return nil, errs.Persistence("save submission", err)
	}
	sub.ID = id

	events.Emit(ctx, s.events, events.New(events.SubmissionCreated, id, "", map[string]any{
		"re":         sub.RE,
		"isJudicial": sub.IsJudicial,
		"files":      len(sub.Files),
	}))
	return sub, nil
}
