package service

import (
	"context"
	"time"

	"predman/internal/domain"
	"predman/internal/logger"
)

// RequestMeta carries the client details stored with audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService handles audit logging
type AuditService struct {
	repo auditStore
	sync bool
}

// NewAuditService creates a new audit service
func NewAuditService(repo auditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log stores an audit entry in the background. Failures are only logged;
// the request that triggered the entry never waits for it.
func (s *AuditService) Log(ctx context.Context, meta RequestMeta, entry domain.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	entry.IP = meta.IP
	entry.UserAgent = meta.UserAgent

	write := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, &entry); err != nil {
			logger.Error("failed to create audit log", "error", err, "action", entry.Action, "user_id", entry.UserID)
		}
	}
	if s.sync {
		write()
		return
	}
	go write()
}

// LogAuth logs an authentication event
func (s *AuditService) LogAuth(ctx context.Context, meta RequestMeta, userID, action string, details map[string]any) {
	s.Log(ctx, meta, domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: domain.AuditCategoryAuth,
		Details:  details,
	})
}

// LogProject logs a project level event
func (s *AuditService) LogProject(ctx context.Context, meta RequestMeta, userID, projectID, action string, details map[string]any) {
	category := domain.AuditCategoryProject
	if action == domain.AuditActionMemberAdd || action == domain.AuditActionMemberRemove {
		category = domain.AuditCategoryMember
	}
	s.Log(ctx, meta, domain.AuditLog{
		UserID:    userID,
		ProjectID: &projectID,
		Action:    action,
		Category:  category,
		Details:   details,
	})
}

// ProjectLog returns the latest entries of a project.
func (s *AuditService) ProjectLog(ctx context.Context, projectID string, limit int) ([]*domain.AuditLog, error) {
	if s == nil || s.repo == nil {
		return []*domain.AuditLog{}, nil
	}
	return s.repo.GetByProject(ctx, projectID, limit)
}

// UserLog returns the latest entries recorded for a user's own actions.
func (s *AuditService) UserLog(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	if s == nil || s.repo == nil {
		return []*domain.AuditLog{}, nil
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
