package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"predman/internal/domain"
	"predman/internal/logger"
)

type UserService struct {
	users    userStore
	projects projectStore
	audit    *AuditService
	cache    boardCache
}

func NewUserService(users userStore, projects projectStore, audit *AuditService, cache boardCache) *UserService {
	return &UserService{users: users, projects: projects, audit: audit, cache: cache}
}

func authResponse(u *domain.User) (*domain.AuthResponse, error) {
	token, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResponse{ID: u.ID, Login: u.Login, Email: u.Email, Token: token}, nil
}

func (s *UserService) Register(ctx context.Context, meta RequestMeta, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Login:        strings.TrimSpace(req.Login),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("email is already registered")
		}
		return nil, err
	}

	logger.Info("user registered", "user_id", u.ID)
	s.audit.LogAuth(ctx, meta, u.ID, domain.AuditActionRegister, nil)
	return authResponse(u)
}

func (s *UserService) Login(ctx context.Context, meta RequestMeta, req domain.LoginRequest) (*domain.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		s.audit.LogAuth(ctx, meta, u.ID, domain.AuditActionLoginFailed, nil)
		return nil, fmt.Errorf("wrong password: %w", domain.ErrUnauthorized)
	}

	s.audit.LogAuth(ctx, meta, u.ID, domain.AuditActionLogin, nil)
	return authResponse(u)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Info returns the user together with the projects they joined.
func (s *UserService) Info(ctx context.Context, id string) (*domain.UserProjects, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListJoined(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.UserProjects{ID: u.ID, Login: u.Login, Email: u.Email, JoinedProjects: projects}, nil
}

// Delete removes the account. Owned projects are handed over or deleted.
// AuditLog returns what the user did recently, newest first.
func (s *UserService) AuditLog(ctx context.Context, id string) ([]*domain.AuditLog, error) {
	return s.audit.UserLog(ctx, id, 100)
}

func (s *UserService) Delete(ctx context.Context, meta RequestMeta, id string) error {
	removals, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}

	for _, r := range removals {
		s.cache.Invalidate(ctx, r.ProjectID)
		switch {
		case r.ProjectDeleted:
			s.audit.LogProject(ctx, meta, id, r.ProjectID, domain.AuditActionProjectDelete, map[string]any{"reason": "last member left"})
		case r.NewOwnerID != "":
			s.audit.LogProject(ctx, meta, id, r.ProjectID, domain.AuditActionOwnerChange, map[string]any{"new_owner_id": r.NewOwnerID})
		}
	}

	logger.Info("user deleted", "user_id", id, "projects", len(removals))
	s.audit.LogAuth(ctx, meta, id, domain.AuditActionAccountDelete, nil)
	return nil
}
