package service

import (
	"context"

	"predman/internal/domain"
	"predman/internal/logger"
)

type MemberService struct {
	projects projectStore
	members  memberStore
	users    userStore
	stats    *StatisticsService
	audit    *AuditService
	cache    boardCache
}

func NewMemberService(projects projectStore, members memberStore, users userStore, stats *StatisticsService, audit *AuditService, cache boardCache) *MemberService {
	return &MemberService{projects: projects, members: members, users: users, stats: stats, audit: audit, cache: cache}
}

// Add lets the owner invite a registered user by email.
func (s *MemberService) Add(ctx context.Context, meta RequestMeta, userID string, req domain.MemberByEmail) (*domain.User, error) {
	info, err := requireOwner(ctx, s.projects, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if err := s.members.Add(ctx, req.ProjectID, u.ID); err != nil {
		return nil, err
	}

	if _, err := s.stats.Refresh(ctx, info); err != nil {
		logger.Error("statistics refresh failed", "project_id", info.ID, "error", err)
	}
	s.audit.LogProject(ctx, meta, userID, req.ProjectID, domain.AuditActionMemberAdd, map[string]any{"member_id": u.ID})
	return u, nil
}

// Remove drops a member. Members may leave on their own; anyone else needs
// the owner.
func (s *MemberService) Remove(ctx context.Context, meta RequestMeta, userID string, req domain.MemberRef) error {
	if req.UserID != userID {
		if _, err := requireOwner(ctx, s.projects, req.ProjectID, userID); err != nil {
			return err
		}
	}

	res, err := s.members.Remove(ctx, req.ProjectID, req.UserID)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, req.ProjectID)

	s.audit.LogProject(ctx, meta, userID, req.ProjectID, domain.AuditActionMemberRemove, map[string]any{"member_id": req.UserID})
	switch {
	case res.ProjectDeleted:
		logger.Info("last member left, project deleted", "project_id", req.ProjectID)
		s.audit.LogProject(ctx, meta, userID, req.ProjectID, domain.AuditActionProjectDelete, map[string]any{"reason": "last member left"})
	case res.NewOwnerID != "":
		logger.Info("owner left, ownership reassigned", "project_id", req.ProjectID, "new_owner_id", res.NewOwnerID)
		s.audit.LogProject(ctx, meta, userID, req.ProjectID, domain.AuditActionOwnerChange, map[string]any{"new_owner_id": res.NewOwnerID})
	}
	return nil
}

func (s *MemberService) List(ctx context.Context, userID, projectID string) ([]domain.User, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}
	return s.members.List(ctx, projectID)
}

// ChangeOwner passes ownership to another member.
func (s *MemberService) ChangeOwner(ctx context.Context, meta RequestMeta, userID string, req domain.MemberByEmail) (*domain.Project, error) {
	info, err := requireOwner(ctx, s.projects, req.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if err := s.members.SetOwner(ctx, req.ProjectID, u.ID); err != nil {
		return nil, err
	}

	s.audit.LogProject(ctx, meta, userID, req.ProjectID, domain.AuditActionOwnerChange, map[string]any{"new_owner_id": u.ID})
	info.OwnerID = u.ID
	return &info.Project, nil
}
