package dashboard

import (
	"context"
	"fmt"
	"slices"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/models"
)

type Submissions interface {
	List(ctx context.Context) ([]models.Submission, error)
	SetStatus(ctx context.Context, actor *auth.Principal, id string, status models.Status) error
	Delete(ctx context.Context, actor *auth.Principal, id string) error
}

type Accounts interface {
	List(ctx context.Context) ([]models.Lawyer, error)
	SetStatus(ctx context.Context, actor *auth.Principal, id string, status models.AccountStatus) error
	Delete(ctx context.Context, actor *auth.Principal, id string) error
}

// Confirm asks the user to approve a destructive action described by
// prompt.
type Confirm func(prompt string) bool

// Optimistic shows next immediately, persists, and puts the previous
// value back if persisting fails.
func Optimistic[T any](cur *T, next T, persist func() error) error {
	prev := *cur
	*cur = next
	if err := persist(); err != nil {
		*cur = prev
		return err
	}
	return nil
}

// Board holds one reviewer's fetched data. It is not safe for concurrent
// use.
type Board struct {
	subs     Submissions
	accounts Accounts
	actor    *auth.Principal

	rows    []models.Submission
	lawyers []models.Lawyer

	Query Query
}

func NewBoard(subs Submissions, accounts Accounts, actor *auth.Principal) *Board {
	return &Board{subs: subs, accounts: accounts, actor: actor, Query: Query{Status: AllStatuses}}
}

func (b *Board) Actor() *auth.Principal { return b.actor }

// Load fetches submissions, and the account list for the superadmin.
func (b *Board) Load(ctx context.Context) error {
	rows, err := b.subs.List(ctx)
	if err != nil {
		return err
	}
	b.rows = rows
	if !b.actor.Superadmin() || b.accounts == nil {
		return nil
	}
	lawyers, err := b.accounts.List(ctx)
	if err != nil {
		return err
	}
	b.lawyers = lawyers
	return nil
}

// Rows returns every fetched submission.
func (b *Board) Rows() []models.Submission { return b.rows }

// Visible returns the fetched submissions that match Query.
func (b *Board) Visible() []models.Submission { return Filter(b.rows, b.Query) }

func (b *Board) Find(id string) (models.Submission, bool) {
	i := slices.IndexFunc(b.rows, func(s models.Submission) bool { return s.ID == id })
	if i < 0 {
		return models.Submission{}, false
	}
	return b.rows[i], true
}

func (b *Board) SetStatus(ctx context.Context, id string, status models.Status) error {
	i := slices.IndexFunc(b.rows, func(s models.Submission) bool { return s.ID == id })
	if i < 0 {
		return errs.NotFound("submission")
	}
	next := slices.Clone(b.rows)
	next[i].Status = status
	return Optimistic(&b.rows, next, func() error {
		return b.subs.SetStatus(ctx, b.actor, id, status)
	})
}

// Delete removes a submission after confirm approves it. It reports
// whether the deletion went ahead.
func (b *Board) Delete(ctx context.Context, id string, confirm Confirm) (bool, error) {
	if !b.actor.Superadmin() {
		return false, errs.Forbidden("only the superadmin may delete submissions")
	}
	i := slices.IndexFunc(b.rows, func(s models.Submission) bool { return s.ID == id })
	if i < 0 {
		return false, errs.NotFound("submission")
	}
	if !confirm(fmt.Sprintf("Excluir permanentemente a solicitação de %s (RE %s)?", b.rows[i].Name, b.rows[i].RE)) {
		return false, nil
	}
	next := slices.Delete(slices.Clone(b.rows), i, i+1)
	err := Optimistic(&b.rows, next, func() error {
		return b.subs.Delete(ctx, b.actor, id)
	})
	return err == nil, err
}

// Lawyers returns the fetched accounts; empty unless the actor is the
// superadmin.
func (b *Board) Lawyers() []models.Lawyer { return b.lawyers }

func (b *Board) SetLawyerStatus(ctx context.Context, id string, status models.AccountStatus) error {
	if !b.actor.Superadmin() {
		return errs.Forbidden("only the superadmin may manage accounts")
	}
	i := slices.IndexFunc(b.lawyers, func(l models.Lawyer) bool { return l.ID == id })
	if i < 0 {
		return errs.NotFound("lawyer")
	}
	if b.lawyers[i].Status == status {
		return nil
	}
	next := slices.Clone(b.lawyers)
	next[i].Status = status
	return Optimistic(&b.lawyers, next, func() error {
		return b.accounts.SetStatus(ctx, b.actor, id, status)
	})
}

func (b *Board) DeleteLawyer(ctx context.Context, id string, confirm Confirm) (bool, error) {
	if !b.actor.Superadmin() {
		return false, errs.Forbidden("only the superadmin may manage accounts")
	}
	i := slices.IndexFunc(b.lawyers, func(l models.Lawyer) bool { return l.ID == id })
	if i < 0 {
		return false, errs.NotFound("lawyer")
	}
	if !confirm(fmt.Sprintf("Excluir a conta de %s (OAB %s)?", b.lawyers[i].Name, b.lawyers[i].OAB)) {
		return false, nil
	}
	next := slices.Delete(slices.Clone(b.lawyers), i, i+1)
	err := Optimistic(&b.lawyers, next, func() error {
		return b.accounts.Delete(ctx, b.actor, id)
	})
	return err == nil, err
}
