package repository

import (
	"context"
	"time"

	"predman/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectInfoColumns = `p.id::text, p.name, p.description, p.owner_id::text, p.due_date,
	p.certainty_percent, p.predicted_deadline, p.available_hours, p.sum_experience,
	p.external_risk_probability, p.created_at, p.updated_at`

func scanProjectInfo(row pgx.Row) (*domain.ProjectInfo, error) {
	var (
		p         domain.ProjectInfo
		due       time.Time
		predicted *time.Time
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &due,
		&p.CertaintyPercent, &predicted, &p.AvailableHours, &p.SumExperience,
		&p.ExternalRiskProbability, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.DueDate = domain.NewDate(due)
	if predicted != nil {
		p.PredictedDeadline = domain.NewDate(*predicted)
	}
	return &p, nil
}

func collectProjects(rows pgx.Rows) ([]domain.Project, error) {
	defer rows.Close()
	out := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts the project and makes the owner its first member.
func (r *ProjectRepository) Create(ctx context.Context, ownerID string, np domain.NewProject) (*domain.ProjectInfo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	if _, err := tx.Exec(ctx,
		`INSERT INTO projects (id, name, description, owner_id, due_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, np.Name, np.Description, ownerID, np.DueDate.Time,
	); err != nil {
		return nil, translate(err, "project")
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, id, ownerID,
	); err != nil {
		return nil, translate(err, "member")
	}

	info, err := scanProjectInfo(tx.QueryRow(ctx,
		`SELECT `+projectInfoColumns+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return info, tx.Commit(ctx)
}

func (r *ProjectRepository) GetInfo(ctx context.Context, id string) (*domain.ProjectInfo, error) {
	info, err := scanProjectInfo(r.db.QueryRow(ctx,
		`SELECT `+projectInfoColumns+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		return nil, translate(err, "project")
	}
	return info, nil
}

// ListJoined returns the projects the user is a member of.
func (r *ProjectRepository) ListJoined(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id::text, p.name, p.description, p.owner_id::text
		 FROM projects p
		 JOIN project_members m ON m.project_id = p.id
		 WHERE m.user_id = $1
		 ORDER BY m.joined_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) ListOwned(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, name, description, owner_id::text
		 FROM projects WHERE owner_id = $1
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// ListIDs returns every project id; used by the daily refresher.
func (r *ProjectRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update writes the editable fields of info.
func (r *ProjectRepository) Update(ctx context.Context, info *domain.ProjectInfo) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects
		 SET name = $2, description = $3, due_date = $4, available_hours = $5,
		     sum_experience = $6, external_risk_probability = $7, updated_at = now()
		 WHERE id = $1`,
		info.ID, info.Name, info.Description, info.DueDate.Time, info.AvailableHours,
		info.SumExperience, info.ExternalRiskProbability,
	)
	if err != nil {
		return translate(err, "project")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("project not found")
	}
	return nil
}

// SavePrediction stores the latest model output.
func (r *ProjectRepository) SavePrediction(ctx context.Context, id string, certainty float64, deadline domain.Date) error {
	var predicted *time.Time
	if !deadline.IsZero() {
		predicted = &deadline.Time
	}
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET certainty_percent = $2, predicted_deadline = $3 WHERE id = $1`,
		id, certainty, predicted,
	)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("project not found")
	}
	return nil
}
