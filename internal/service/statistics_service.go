package service

import (
	"context"
	"fmt"
	"time"

	"predman/internal/domain"
	"predman/internal/logger"
)

type StatisticsService struct {
	projects  projectStore
	members   memberStore
	tasks     taskStore
	deps      dependencyStore
	stats     statisticsStore
	predictor Predictor
	now       func() time.Time
}

func NewStatisticsService(projects projectStore, members memberStore, tasks taskStore, deps dependencyStore, stats statisticsStore, predictor Predictor) *StatisticsService {
	return &StatisticsService{
		projects:  projects,
		members:   members,
		tasks:     tasks,
		deps:      deps,
		stats:     stats,
		predictor: predictor,
		now:       time.Now,
	}
}

// Refresh recomputes today's snapshot of the project.
func (s *StatisticsService) Refresh(ctx context.Context, info *domain.ProjectInfo) (domain.ProjectStatistics, error) {
	teamSize, err := s.members.Count(ctx, info.ID)
	if err != nil {
		return domain.ProjectStatistics{}, err
	}
	tasks, err := s.tasks.ListByProject(ctx, info.ID)
	if err != nil {
		return domain.ProjectStatistics{}, err
	}
	deps, err := s.deps.ListForProject(ctx, info.ID)
	if err != nil {
		return domain.ProjectStatistics{}, err
	}

	snapshot := ComputeStatistics(info, teamSize, tasks, deps, s.now())
	if err := s.stats.Save(ctx, &snapshot); err != nil {
		return domain.ProjectStatistics{}, fmt.Errorf("save statistics: %w", err)
	}
	return snapshot, nil
}

// History refreshes today's snapshot and returns all of them.
func (s *StatisticsService) History(ctx context.Context, userID, projectID string) ([]domain.ProjectStatistics, error) {
	if err := requireMember(ctx, s.members, projectID, userID); err != nil {
		return nil, err
	}
	info, err := s.projects.GetInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Refresh(ctx, info); err != nil {
		return nil, err
	}
	return s.stats.ListByProject(ctx, projectID)
}

// UpdatePrediction asks the model for a new deadline and stores it on info.
// When the model is unavailable the prediction falls back to zero days with
// zero certainty.
func (s *StatisticsService) UpdatePrediction(ctx context.Context, info *domain.ProjectInfo) error {
	created := domain.NewDate(info.CreatedAt)
	estimated := created.DaysUntil(info.DueDate)

	prediction, err := s.predictor.Predict(ctx, info.ID, estimated)
	if err != nil {
		logger.Warn("prediction unavailable, using fallback", "project_id", info.ID, "error", err)
		prediction = domain.Prediction{}
	}

	info.CertaintyPercent = prediction.CertaintyPercent
	info.PredictedDeadline = created.AddDays(prediction.PredictedDays)
	return s.projects.SavePrediction(ctx, info.ID, info.CertaintyPercent, info.PredictedDeadline)
}

// RefreshAll updates statistics and predictions of every project. Failures
// of single projects are logged and skipped.
func (s *StatisticsService) RefreshAll(ctx context.Context) error {
	ids, err := s.projects.ListIDs(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		info, err := s.projects.GetInfo(ctx, id)
		if err == nil {
			_, err = s.Refresh(ctx, info)
		}
		if err == nil {
			err = s.UpdatePrediction(ctx, info)
		}
		if err != nil {
			failed++
			logger.Error("daily refresh failed", "project_id", id, "error", err)
		}
	}

	logger.Info("daily refresh done", "projects", len(ids), "failed", failed)
	return nil
}
