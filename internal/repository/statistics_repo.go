package repository

import (
	"context"
	"time"

	"predman/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatisticsRepository struct {
	db *pgxpool.Pool
}

func NewStatisticsRepository(db *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// Save stores the snapshot; a snapshot saved earlier the same day is replaced.
func (r *StatisticsRepository) Save(ctx context.Context, s *domain.ProjectStatistics) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO project_statistics (
			id, project_id, team_size, days_since_start, remaining_tasks, remaining_story_points,
			dependency_coefficient, critical_path_length, sum_experience, available_hours,
			external_risk_probability, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (project_id, saved_at) DO UPDATE SET
			team_size = EXCLUDED.team_size,
			days_since_start = EXCLUDED.days_since_start,
			remaining_tasks = EXCLUDED.remaining_tasks,
			remaining_story_points = EXCLUDED.remaining_story_points,
			dependency_coefficient = EXCLUDED.dependency_coefficient,
			critical_path_length = EXCLUDED.critical_path_length,
			sum_experience = EXCLUDED.sum_experience,
			available_hours = EXCLUDED.available_hours,
			external_risk_probability = EXCLUDED.external_risk_probability
		 RETURNING id::text`,
		s.ID, s.ProjectID, s.TeamSize, s.DaysSinceStart, s.RemainingTasks, s.RemainingStoryPoints,
		s.DependencyCoefficient, s.CriticalPathLength, s.SumExperience, s.AvailableHours,
		s.ExternalRiskProbability, s.SavedAt.Time,
	).Scan(&s.ID)
	return translate(err, "statistics")
}

// ListByProject returns snapshots oldest first.
func (r *StatisticsRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectStatistics, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, project_id::text, team_size, days_since_start, remaining_tasks,
		        remaining_story_points, dependency_coefficient, critical_path_length,
		        sum_experience, available_hours, external_risk_probability, saved_at
		 FROM project_statistics
		 WHERE project_id = $1
		 ORDER BY saved_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProjectStatistics{}
	for rows.Next() {
		var (
			s     domain.ProjectStatistics
			saved time.Time
		)
		if err := rows.Scan(
			&s.ID, &s.ProjectID, &s.TeamSize, &s.DaysSinceStart, &s.RemainingTasks,
			&s.RemainingStoryPoints, &s.DependencyCoefficient, &s.CriticalPathLength,
			&s.SumExperience, &s.AvailableHours, &s.ExternalRiskProbability, &saved,
		); err != nil {
			return nil, err
		}
		s.SavedAt = domain.NewDate(saved)
		out = append(out, s)
	}
	return out, rows.Err()
}
