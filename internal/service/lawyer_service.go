package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/events"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

const minPasswordLen = 6

type LawyerService struct {
	lawyers store.Lawyers
	events  events.Publisher
	now     func() time.Time
}

func NewLawyerService(lawyers store.Lawyers, pub events.Publisher) *LawyerService {
	return &LawyerService{lawyers: lawyers, events: pub, now: time.Now}
}

type RegisterRequest struct {
	OAB      string `json:"oab"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a pending account. It grants no access until the
// superadmin activates it.
func (s *LawyerService) Register(ctx context.Context, req RegisterRequest) (*models.Lawyer, error) {
	oab := intake.Digits(req.OAB)
	name := strings.TrimSpace(req.Name)
	switch {
	case oab == "":
		return nil, errs.Validation("oab", "bar number is required")
	case name == "":
		return nil, errs.Validation("name", "name is required")
	case len(req.Password) < minPasswordLen:
		return nil, errs.Validation("password", "password must have at least 6 characters")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	l := &models.Lawyer{
		OAB:          oab,
		Name:         name,
		Phone:        intake.MaskPhone(req.Phone),
		PasswordHash: hash,
		Status:       models.AccountPending,
		CreatedAt:    models.Timestamp(s.now()),
	}
	id, err := s.lawyers.Insert(ctx, l)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errs.Conflict("bar number already registered")
		}
		return nil, errs.Persistence("register lawyer", err)
	}
	l.ID = id
	events.Emit(ctx, s.events, events.New(events.LawyerRegistered, oab, "", map[string]any{"name": name}))
	return l, nil
}

func (s *LawyerService) List(ctx context.Context) ([]models.Lawyer, error) {
	list, err := s.lawyers.List(ctx)
	if err != nil {
		return nil, errs.Persistence("list lawyers", err)
	}
	if list == nil {
		list = []models.Lawyer{}
	}
	return list, nil
}

// SetStatus changes an account's access state. Setting the current value
// again is a no-op.
func (s *LawyerService) SetStatus(ctx context.Context, actor *auth.Principal, id string, status models.AccountStatus) error {
	if actor == nil || !actor.Superadmin() {
		return errs.Forbidden("only the superadmin may manage accounts")
	}
	if !status.Valid() {
		return errs.Validation("status", "unknown account status")
	}
	current, err := s.lawyers.FindByID(ctx, id)
	if err != nil {
		return errs.Persistence("load lawyer", err)
	}
	if current == nil {
		return errs.NotFound("lawyer")
	}
	if current.Status == status {
		return nil
	}
	if err := s.lawyers.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("lawyer")
		}
		return errs.Persistence("update lawyer", err)
	}
	events.Emit(ctx, s.events, events.New(events.LawyerStatusChanged, current.OAB, actorLogin(actor), map[string]any{
		"status": string(status),
	}))
	return nil
}

func (s *LawyerService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if actor == nil || !actor.Superadmin() {
		return errs.Forbidden("only the superadmin may manage accounts")
	}
	if err := s.lawyers.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("lawyer")
		}
		return errs.Persistence("delete lawyer", err)
	}
	events.Emit(ctx, s.events, events.New(events.LawyerDeleted, id, actorLogin(actor), nil))
	return nil
}
