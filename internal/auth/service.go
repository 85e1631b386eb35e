// Package auth registers companies, authenticates their users and guards
// the API with signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"bullfinance/internal/core"
	"bullfinance/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email")
)

type RegisterInput struct {
	CompanyName string `json:"company_name"`
	CNPJ        string `json:"cnpj"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      core.User     `json:"user"`
	Company   *core.Company `json:"company,omitempty"`
}

type Service struct {
	accounts store.AccountStore
	tokens   *TokenIssuer
}

func NewService(accounts store.AccountStore, tokens *TokenIssuer) *Service {
	return &Service{accounts: accounts, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.Name) == "" {
		return Session{}, core.ErrEmptyName
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}

	company, user, err := s.accounts.CreateCompanyWithOwner(ctx,
		core.Company{Name: strings.TrimSpace(in.CompanyName), CNPJ: strings.TrimSpace(in.CNPJ)},
		core.User{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: hash})
	if err != nil {
		return Session{}, fmt.Errorf("register company: %w", err)
	}

	session, err := s.session(user)
	if err != nil {
		return Session{}, err
	}
	session.Company = &company
	slog.InfoContext(ctx, "Company registered", "company_id", company.ID, "user_id", user.ID)
	return session, nil
}

// Login never reveals whether the email exists.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	user, err := s.accounts.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		slog.WarnContext(ctx, "Failed login", "user_id", user.ID)
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(u core.User) (Session, error) {
	token, expires, err := s.tokens.Issue(u.ID, u.CompanyID, u.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", ErrInvalidEmail
	}
	return s, nil
}
