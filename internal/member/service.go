package member

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("member not found")
	ErrEmailExists = errors.New("email already registered")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, error)
	GetByID(ctx context.Context, id int) (*Member, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" {
		exists, err := s.repo.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
	}

	return s.repo.Create(ctx, strings.TrimSpace(req.Name), email, req.IsStudent)
}

func (s *service) GetByID(ctx context.Context, id int) (*Member, error) {
	return s.repo.FindByID(ctx, id)
}
