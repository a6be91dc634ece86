package domain

import "time"

// ProjectStatistics is one daily snapshot of the prediction inputs.
type ProjectStatistics struct {
	ID                      string  `db:"id" json:"id"`
	ProjectID               string  `db:"project_id" json:"project_id"`
	TeamSize                int     `db:"team_size" json:"team_size"`
	DaysSinceStart          int     `db:"days_since_start" json:"days_since_start"`
	RemainingTasks          int     `db:"remaining_tasks" json:"remaining_tasks"`
	RemainingStoryPoints    float64 `db:"remaining_story_points" json:"remaining_story_points"`
	DependencyCoefficient   float64 `db:"dependency_coefficient" json:"dependency_coefficient"`
	CriticalPathLength      float64 `db:"critical_path_length" json:"critical_path_length"`
	SumExperience           float64 `db:"sum_experience" json:"sum_experience"`
	AvailableHours          float64 `db:"available_hours" json:"available_hours"`
	ExternalRiskProbability float64 `db:"external_risk_probability" json:"external_risk_probability"`
	SavedAt                 Date    `db:"saved_at" json:"saved_at"`
}

// Prediction - output of the deadline model
type Prediction struct {
	PredictedDays    int     `json:"predicted_days"`
	CertaintyPercent float64 `json:"certainty_percent"`
}

// DaysBetween counts whole days between two instants.
func DaysBetween(from, to time.Time) int {
	return NewDate(from).DaysUntil(NewDate(to))
}
