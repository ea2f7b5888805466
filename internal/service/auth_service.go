package service

import (
	"context"
	"time"

	"github.com/cessadesk/cessadesk/internal/auth"
)

type AuthService struct {
	authenticator auth.Authenticator
	jwtSecret     string
	ttl           time.Duration
}

func NewAuthService(a auth.Authenticator, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{authenticator: a, jwtSecret: jwtSecret, ttl: ttl}
}

type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expiresAt"`
	User      *auth.Principal `json:"user"`
}

// Authenticate checks credentials without issuing a token.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*auth.Principal, error) {
	return s.authenticator.Authenticate(ctx, login, password)
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	p, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken(s.jwtSecret, p, s.ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.ttl).UTC().Format(time.RFC3339),
		User:      p,
	}, nil
}
