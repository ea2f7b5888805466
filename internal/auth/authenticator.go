// Package auth gates the review dashboard. Credentials are checked by a
// fixed-order chain of authenticators: the configured superadmin pair
// first, then the lawyers table.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/models"
)

// Role is the privilege level of an authenticated principal.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleLawyer     Role = "lawyer"
)

// Principal is who logged in.
type Principal struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (p *Principal) Superadmin() bool { return p.Role == RoleSuperadmin }

// ErrNotApplicable tells a Chain to try the next authenticator.
var ErrNotApplicable = errors.New("auth: credentials not handled")

// Authenticator checks one login/secret pair.
type Authenticator interface {
	Authenticate(ctx context.Context, login, secret string) (*Principal, error)
}

// StaticAuthenticator accepts exactly one configured identity.
type StaticAuthenticator struct {
	User     string
	Password string
}

func (a StaticAuthenticator) Authenticate(ctx context.Context, login, secret string) (*Principal, error) {
	if a.User == "" || a.Password == "" {
		return nil, ErrNotApplicable
	}
	userOK := subtle.ConstantTimeCompare([]byte(login), []byte(a.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(secret), []byte(a.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrNotApplicable
	}
	return &Principal{ID: "superadmin", Login: a.User, Name: "Administrador", Role: RoleSuperadmin}, nil
}

// LawyerFinder is the lookup TableAuthenticator needs.
type LawyerFinder interface {
	FindByOAB(ctx context.Context, oab string) (*models.Lawyer, error)
}

// TableAuthenticator accepts active lawyers whose password matches.
// Unknown, pending, blocked and wrong-password logins all produce the
// same generic error.
type TableAuthenticator struct {
	Lawyers LawyerFinder
}

func (a TableAuthenticator) Authenticate(ctx context.Context, login, secret string) (*Principal, error) {
	oab := intake.Digits(login)
	if oab == "" || secret == "" {
		return nil, errs.Auth()
	}
	l, err := a.Lawyers.FindByOAB(ctx, oab)
	if err != nil {
		return nil, errs.Persistence("lawyer lookup", err)
	}
	if l == nil || !CheckPassword(secret, l.PasswordHash) || l.Status != models.AccountActive {
		return nil, errs.Auth()
	}
	return &Principal{ID: l.ID, Login: l.OAB, Name: l.Name, Role: RoleLawyer}, nil
}

// Chain tries each authenticator in order until one handles the login.
type Chain []Authenticator

func (c Chain) Authenticate(ctx context.Context, login, secret string) (*Principal, error) {
	for _, a := range c {
		p, err := a.Authenticate(ctx, login, secret)
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		return p, err
	}
	return nil, errs.Auth()
}
