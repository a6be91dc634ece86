package service

import (
	"context"

	"predman/internal/domain"
	"predman/internal/logger"
)

type ProjectService struct {
	projects projectStore
	members  memberStore
	stats    *StatisticsService
	audit    *AuditService
	cache    boardCache
}

func NewProjectService(projects projectStore, members memberStore, stats *StatisticsService, audit *AuditService, cache boardCache) *ProjectService {
	return &ProjectService{projects: projects, members: members, stats: stats, audit: audit, cache: cache}
}

// Create stores the project with userID as owner and records the first
// statistics snapshot.
func (s *ProjectService) Create(ctx context.Context, meta RequestMeta, userID string, np domain.NewProject) (*domain.ProjectInfo, error) {
	if np.DueDate.IsZero() {
		return nil, domain.Invalid("due_date is required")
	}

	info, err := s.projects.Create(ctx, userID, np)
	if err != nil {
		return nil, err
	}
	if _, err := s.stats.Refresh(ctx, info); err != nil {
		logger.Error("initial statistics failed", "project_id", info.ID, "error", err)
	}

	logger.Info("project created", "project_id", info.ID, "owner_id", userID)
	s.audit.LogProject(ctx, meta, userID, info.ID, domain.AuditActionProjectCreate, map[string]any{"name": info.Name})
	return info, nil
}

func (s *ProjectService) ListJoined(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListJoined(ctx, userID)
}

func (s *ProjectService) ListOwned(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListOwned(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}
	info, err := s.projects.GetInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &info.Project, nil
}

// Info returns the full project with a freshly computed prediction.
func (s *ProjectService) Info(ctx context.Context, userID, projectID string) (*domain.ProjectInfo, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}
	info, err := s.projects.GetInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.stats.UpdatePrediction(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Update applies a partial update. Changing any prediction input refreshes
// today's statistics and the prediction.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, patch domain.ProjectPatch) (*domain.ProjectInfo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}

	info, err := s.projects.GetInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	patch.Apply(info)
	if err := s.projects.Update(ctx, info); err != nil {
		return nil, err
	}

	if patch.TouchesPrediction() {
		if _, err := s.stats.Refresh(ctx, info); err != nil {
			return nil, err
		}
		if err := s.stats.UpdatePrediction(ctx, info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (s *ProjectService) Delete(ctx context.Context, meta RequestMeta, userID, projectID string) error {
	info, err := requireOwner(ctx, s.projects, projectID, userID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, projectID)

	logger.Info("project deleted", "project_id", projectID)
	s.audit.LogProject(ctx, meta, userID, projectID, domain.AuditActionProjectDelete, map[string]any{"name": info.Name})
	return nil
}

// AuditLog returns the latest audit entries of the project; owner only.
func (s *ProjectService) AuditLog(ctx context.Context, userID, projectID string) ([]*domain.AuditLog, error) {
	if _, err := requireOwner(ctx, s.projects, projectID, userID); err != nil {
		return nil, err
	}
	return s.audit.ProjectLog(ctx, projectID, 100)
}
